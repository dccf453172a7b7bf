package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailflow/models"
	"mailflow/store"
	"mailflow/utils"
)

type FlowController struct {
	Store  store.Store
	Logger *logrus.Entry
}

func NewFlowController(s store.Store, logger *logrus.Entry) *FlowController {
	return &FlowController{Store: s, Logger: newLogger(logger, "flow_controller")}
}

// GetFlow returns the automation with its website and connected list.
func (fc *FlowController) GetFlow(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("automationId"))
	if id == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "automationId is required", nil)
	}
	ctx := c.UserContext()

	automation, err := fc.Store.GetAutomation(ctx, id)
	if err != nil {
		return storeError(c, fc.Logger, err, "automation")
	}

	var website *models.Website
	if automation.WebsiteID != "" {
		w, err := fc.Store.GetWebsite(ctx, automation.WebsiteID)
		switch {
		case err == nil:
			website = &w
		case !errors.Is(err, store.ErrNotFound):
			return storeError(c, fc.Logger, err, "website")
		}
	}

	var list *models.SubscriberList
	if automation.ListID != "" {
		l, err := fc.Store.GetList(ctx, automation.ListID)
		switch {
		case err == nil:
			list = &l
		case !errors.Is(err, store.ErrNotFound):
			return storeError(c, fc.Logger, err, "list")
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"automation":    automation,
		"websiteData":   website,
		"connectedList": list,
	}))
}

// CreateFlow creates an inactive automation.
func (fc *FlowController) CreateFlow(c *fiber.Ctx) error {
	var input struct {
		Name      string `json:"name" validate:"required,max=120"`
		ListID    string `json:"listId" validate:"required"`
		WebsiteID string `json:"websiteId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	automation := &models.Automation{
		Name:      input.Name,
		ListID:    input.ListID,
		WebsiteID: input.WebsiteID,
	}
	if err := fc.Store.CreateAutomation(c.UserContext(), automation); err != nil {
		return storeError(c, fc.Logger, err, "automation")
	}

	fc.Logger.WithField("automation_id", automation.ID).Info("automation created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"message":    "Automation created successfully",
		"automation": automation,
	}))
}

// UpdateFlow applies one kind of shell change: statusChange or nameChange.
func (fc *FlowController) UpdateFlow(c *fiber.Ctx) error {
	var input struct {
		AutomationID string                `json:"automationId" validate:"required"`
		Status       string                `json:"status" validate:"oneof=statusChange nameChange"`
		UpdateData   models.FlowUpdateData `json:"updateData"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var data models.FlowUpdateData
	switch input.Status {
	case models.FlowUpdateStatus:
		if input.UpdateData.IsActive == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "updateData.isActive is required", nil)
		}
		data.IsActive = input.UpdateData.IsActive
	case models.FlowUpdateName:
		if input.UpdateData.Name == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "updateData.name is required", nil)
		}
		name := strings.TrimSpace(*input.UpdateData.Name)
		if err := utils.ValidateVar(name, "required,max=120", "name"); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		data.Name = &name
	}

	automation, err := fc.Store.UpdateAutomation(c.UserContext(), input.AutomationID, data)
	if err != nil {
		return storeError(c, fc.Logger, err, "automation")
	}

	utils.LogEvent("automation_updated", map[string]interface{}{
		"automation_id": automation.ID,
		"status":        input.Status,
	})
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":    "Automation updated successfully",
		"automation": automation,
	}))
}

// DeleteFlow removes an automation and its steps.
func (fc *FlowController) DeleteFlow(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("automationId"))
	if id == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "automationId is required", nil)
	}
	if err := fc.Store.DeleteAutomation(c.UserContext(), id); err != nil {
		return storeError(c, fc.Logger, err, "automation")
	}
	fc.Logger.WithField("automation_id", id).Info("automation deleted")
	return c.JSON(utils.MessageResponse("Automation deleted successfully"))
}
