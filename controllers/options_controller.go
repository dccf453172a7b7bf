package controller

import (
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailflow/models"
	"mailflow/store"
	"mailflow/utils"
)

// OptionsController serves the resources the step forms pick from:
// websites, subscriber lists, templates and sending servers.
type OptionsController struct {
	Store   store.Store
	Secrets *utils.Cipher
	Logger  *logrus.Entry
}

func NewOptionsController(s store.Store, secrets *utils.Cipher, logger *logrus.Entry) *OptionsController {
	return &OptionsController{Store: s, Secrets: secrets, Logger: newLogger(logger, "options_controller")}
}

func (oc *OptionsController) GetWebsites(c *fiber.Ctx) error {
	websites, err := oc.Store.ListWebsites(c.UserContext())
	if err != nil {
		return storeError(c, oc.Logger, err, "websites")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"websites": websites}))
}

func (oc *OptionsController) CreateWebsite(c *fiber.Ctx) error {
	var website models.Website
	if err := c.BodyParser(&website); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	website.ID = ""
	website.Domain = strings.ToLower(strings.TrimSpace(website.Domain))
	if err := utils.ValidateStruct(website); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := oc.Store.CreateWebsite(c.UserContext(), &website); err != nil {
		return storeError(c, oc.Logger, err, "website")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"website": website}))
}

// GetLists lists subscriber lists, scoped to websiteId when given.
func (oc *OptionsController) GetLists(c *fiber.Ctx) error {
	lists, err := oc.Store.ListLists(c.UserContext(), strings.TrimSpace(c.Query("websiteId")))
	if err != nil {
		return storeError(c, oc.Logger, err, "lists")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"lists": lists}))
}

func (oc *OptionsController) CreateList(c *fiber.Ctx) error {
	var list models.SubscriberList
	if err := c.BodyParser(&list); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	list.ID = ""
	if list.WebsiteID == "" {
		list.WebsiteID = strings.TrimSpace(c.Query("websiteId"))
	}
	if err := utils.ValidateStruct(list); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	ctx := c.UserContext()
	if _, err := oc.Store.GetWebsite(ctx, list.WebsiteID); err != nil {
		return storeError(c, oc.Logger, err, "website")
	}
	if err := oc.Store.CreateList(ctx, &list); err != nil {
		return storeError(c, oc.Logger, err, "list")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"list": list}))
}

func (oc *OptionsController) GetTemplates(c *fiber.Ctx) error {
	templates, err := oc.Store.ListTemplates(c.UserContext())
	if err != nil {
		return storeError(c, oc.Logger, err, "templates")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"templates": templates}))
}

func (oc *OptionsController) CreateTemplate(c *fiber.Ctx) error {
	var template models.Template
	if err := c.BodyParser(&template); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	template.ID = ""
	if err := utils.ValidateStruct(template); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := oc.Store.CreateTemplate(c.UserContext(), &template); err != nil {
		return storeError(c, oc.Logger, err, "template")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"template": template}))
}

func (oc *OptionsController) GetServers(c *fiber.Ctx) error {
	servers, err := oc.Store.ListServers(c.UserContext())
	if err != nil {
		return storeError(c, oc.Logger, err, "servers")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"servers": servers}))
}

// CreateServer registers a sending server. The password is accepted on
// input, stored encrypted and never returned.
func (oc *OptionsController) CreateServer(c *fiber.Ctx) error {
	var input struct {
		models.MailServer
		Password string `json:"smtpPassword"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	server := input.MailServer
	server.ID = ""
	server.FromEmail = strings.TrimSpace(server.FromEmail)
	if err := utils.ValidateStruct(server); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := checkmail.ValidateFormat(server.FromEmail); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "fromEmail must be a valid email", err)
	}
	if input.Password != "" {
		if oc.Secrets == nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Password storage is not configured", nil)
		}
		sealed, err := oc.Secrets.Encrypt(input.Password)
		if err != nil {
			utils.LogError("encrypt_smtp_password", err, map[string]interface{}{"server": server.Name})
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store password", nil)
		}
		server.SMTPPassword = sealed
	}
	if err := oc.Store.CreateServer(c.UserContext(), &server); err != nil {
		return storeError(c, oc.Logger, err, "server")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{"server": server}))
}
