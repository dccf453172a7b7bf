package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailflow/models"
	"mailflow/store"
	"mailflow/utils"
)

type StepController struct {
	Store  store.Store
	Logger *logrus.Entry
}

func NewStepController(s store.Store, logger *logrus.Entry) *StepController {
	return &StepController{Store: s, Logger: newLogger(logger, "step_controller")}
}

// GetSteps lists the steps of a flow ordered by stepCount.
func (sc *StepController) GetSteps(c *fiber.Ctx) error {
	flowID := strings.TrimSpace(c.Query("flowId"))
	if flowID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "flowId is required", nil)
	}
	steps, err := sc.Store.ListSteps(c.UserContext(), flowID)
	if err != nil {
		return storeError(c, sc.Logger, err, "steps")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"steps": steps}))
}

// CreateStep stores a new step. The server issues the id; a missing
// stepCount appends the step.
func (sc *StepController) CreateStep(c *fiber.Ctx) error {
	var input struct {
		FlowID string            `json:"flowId" validate:"required"`
		Step   models.StepRecord `json:"step"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if input.Step.StepCount < 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "stepCount must be positive", nil)
	}

	ctx := c.UserContext()
	if _, err := sc.Store.GetAutomation(ctx, input.FlowID); err != nil {
		return storeError(c, sc.Logger, err, "automation")
	}

	step := input.Step
	step.ID = ""
	step.FlowID = input.FlowID
	if err := sc.Store.CreateStep(ctx, &step); err != nil {
		return storeError(c, sc.Logger, err, "step")
	}

	sc.Logger.WithFields(logrus.Fields{
		"flow_id":   step.FlowID,
		"step_id":   step.ID,
		"step_type": step.StepType,
	}).Info("step created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"message": "Step created successfully",
		"step":    step,
	}))
}

// UpdateStep applies a partial update to one step.
func (sc *StepController) UpdateStep(c *fiber.Ctx) error {
	var input struct {
		FlowID   string            `json:"flowId" validate:"required"`
		StepID   string            `json:"stepId" validate:"required"`
		StepData models.StepUpdate `json:"stepData"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if t := input.StepData.StepType; t != nil && !t.IsValid() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "stepType is not a known step type", nil)
	}
	if n := input.StepData.StepCount; n != nil && *n < 1 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "stepCount must be at least 1", nil)
	}

	step, err := sc.Store.UpdateStep(c.UserContext(), input.FlowID, input.StepID, input.StepData)
	if err != nil {
		return storeError(c, sc.Logger, err, "step")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Step updated successfully",
		"step":    step,
	}))
}

// DeleteStep removes one step of a flow.
func (sc *StepController) DeleteStep(c *fiber.Ctx) error {
	flowID := strings.TrimSpace(c.Query("flowId"))
	stepID := strings.TrimSpace(c.Query("stepId"))
	if flowID == "" || stepID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "flowId and stepId are required", nil)
	}
	if err := sc.Store.DeleteStep(c.UserContext(), flowID, stepID); err != nil {
		return storeError(c, sc.Logger, err, "step")
	}
	sc.Logger.WithFields(logrus.Fields{"flow_id": flowID, "step_id": stepID}).Info("step deleted")
	return c.JSON(utils.MessageResponse("Step deleted successfully"))
}
