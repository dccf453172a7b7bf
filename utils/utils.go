package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the JSON wrapper every /api response carries. Payloads sit
// next to it under their own keys.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse writes a standardized failure response.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := Envelope{Message: message}
	if err != nil {
		response.Details = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse adds the success flag to the payload fields.
func SuccessResponse(fields fiber.Map) fiber.Map {
	response := fiber.Map{"success": true}
	for k, v := range fields {
		response[k] = v
	}
	return response
}

// MessageResponse is a success response with only a message.
func MessageResponse(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
