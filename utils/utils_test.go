package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, app *fiber.App, target string) (int, Envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, env
}

func TestResponseEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusConflict, "Step busy", errors.New("locked"))
	})
	app.Get("/done", func(c *fiber.Ctx) error {
		return c.JSON(MessageResponse("Step deleted"))
	})

	status, env := decodeEnvelope(t, app, "/fail")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, Envelope{Success: false, Message: "Step busy", Details: "locked"}, env)

	status, env = decodeEnvelope(t, app, "/done")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, Envelope{Success: true, Message: "Step deleted"}, env)
}

func TestSuccessResponse(t *testing.T) {
	got := SuccessResponse(fiber.Map{"step": 1})
	assert.Equal(t, true, got["success"])
	assert.Equal(t, 1, got["step"])
}
