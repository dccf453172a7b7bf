package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailflow/store"
	"mailflow/utils"
)

// storeError answers a failed store call: 404 for missing records, 500
// with a report otherwise.
func storeError(c *fiber.Ctx, log *logrus.Entry, err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, what+" not found", nil)
	}
	utils.LogError("store_error", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	log.WithError(err).WithField("path", c.Path()).Error("store call failed")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process "+what, err)
}

func newLogger(logger *logrus.Entry, component string) *logrus.Entry {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return logger.WithField("component", component)
}
