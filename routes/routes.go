package routes

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	controller "mailflow/controllers"
	"mailflow/store"
	"mailflow/utils"
)

// SetupRoutes registers the /api routes, the health check and the 404
// handler on app. secrets seals SMTP passwords; without it servers can only
// be created without one. One line per /api request goes to accessLog, which
// the caller owns; a nil accessLog disables request logging.
func SetupRoutes(app *fiber.App, s store.Store, secrets *utils.Cipher, log *logrus.Entry, accessLog io.Writer) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	flowController := controller.NewFlowController(s, log)
	stepController := controller.NewStepController(s, log)
	optionsController := controller.NewOptionsController(s, secrets, log)

	var handlers []fiber.Handler
	if accessLog != nil {
		handlers = append(handlers, logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
			Output: accessLog,
		}))
	}
	api := app.Group("/api", handlers...)

	workFlow := api.Group("/work-flow")
	workFlow.Get("/flow", flowController.GetFlow)
	workFlow.Post("/flow", flowController.CreateFlow)
	workFlow.Put("/flow", flowController.UpdateFlow)
	workFlow.Delete("/flow", flowController.DeleteFlow)

	workFlow.Get("/steps", stepController.GetSteps)
	workFlow.Post("/steps", stepController.CreateStep)
	workFlow.Put("/steps", stepController.UpdateStep)
	workFlow.Delete("/steps", stepController.DeleteStep)

	api.Get("/list", optionsController.GetLists)
	api.Post("/list", optionsController.CreateList)
	api.Get("/templates", optionsController.GetTemplates)
	api.Post("/templates", optionsController.CreateTemplate)
	api.Get("/servers", optionsController.GetServers)
	api.Post("/servers", optionsController.CreateServer)
	api.Get("/websites", optionsController.GetWebsites)
	api.Post("/websites", optionsController.CreateWebsite)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(utils.SuccessResponse(fiber.Map{"status": "running"}))
	})

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Endpoint not found", nil)
	})

	log.Info("routes initialized")
}
