package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailflow/models"
	"mailflow/store"
	"mailflow/utils"
)

var testKey = strings.Repeat("k", 32)

func newTestApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	secrets, err := utils.NewCipher(testKey)
	require.NoError(t, err)
	app := fiber.New()
	SetupRoutes(app, s, secrets, logrus.NewEntry(log), io.Discard)
	return app, s
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func seedFlow(t *testing.T, s *store.MemoryStore) models.Automation {
	t.Helper()
	ctx := context.Background()
	website := &models.Website{Name: "Shop", Domain: "shop.example.com"}
	require.NoError(t, s.CreateWebsite(ctx, website))
	list := &models.SubscriberList{WebsiteID: website.ID, Name: "Customers"}
	require.NoError(t, s.CreateList(ctx, list))
	a := &models.Automation{Name: "Onboarding", ListID: list.ID, WebsiteID: website.ID}
	require.NoError(t, s.CreateAutomation(ctx, a))
	return *a
}

func TestSetupRoutesWritesAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(io.Discard)
	app := fiber.New()
	SetupRoutes(app, store.NewMemoryStore(), nil, logrus.NewEntry(log), &buf)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/websites", nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, fiber.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, status)

	assert.Contains(t, buf.String(), "200 -")
	assert.Contains(t, buf.String(), "GET /api/websites")
	assert.NotContains(t, buf.String(), "/health")
}

func TestSetupRoutesWithoutAccessLog(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, store.NewMemoryStore(), nil, nil, nil)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/websites", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestGetFlowReturnsShell(t *testing.T) {
	app, s := newTestApp(t)
	a := seedFlow(t, s)

	status, body := doJSON(t, app, http.MethodGet, "/api/work-flow/flow?automationId="+a.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	automation := body["automation"].(map[string]interface{})
	assert.Equal(t, "Onboarding", automation["name"])
	assert.Equal(t, "Shop", body["websiteData"].(map[string]interface{})["name"])
	assert.Equal(t, "Customers", body["connectedList"].(map[string]interface{})["name"])
}

func TestGetFlowMissing(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/work-flow/flow?automationId=nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "automation not found", body["message"])
}

func TestUpdateFlowSeparateChanges(t *testing.T) {
	app, s := newTestApp(t)
	a := seedFlow(t, s)

	status, _ := doJSON(t, app, http.MethodPut, "/api/work-flow/flow", fiber.Map{
		"automationId": a.ID,
		"status":       models.FlowUpdateStatus,
		"updateData":   fiber.Map{"isActive": true},
	})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/work-flow/flow", fiber.Map{
		"automationId": a.ID,
		"status":       models.FlowUpdateName,
		"updateData":   fiber.Map{"name": "Welcome"},
	})
	require.Equal(t, fiber.StatusOK, status)

	got, err := s.GetAutomation(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Welcome", got.Name)

	status, body := doJSON(t, app, http.MethodPut, "/api/work-flow/flow", fiber.Map{
		"automationId": a.ID,
		"status":       "colorChange",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestStepLifecycle(t *testing.T) {
	app, s := newTestApp(t)
	a := seedFlow(t, s)

	status, body := doJSON(t, app, http.MethodPost, "/api/work-flow/steps", fiber.Map{
		"flowId": a.ID,
		"step": fiber.Map{
			"_id":          "tmp_client",
			"stepType":     "waitSubscriber",
			"title":        "Wait",
			"waitDuration": 2,
			"waitUnit":     "days",
		},
	})
	require.Equal(t, fiber.StatusCreated, status)
	step := body["step"].(map[string]interface{})
	id := step["_id"].(string)
	assert.NotEqual(t, "tmp_client", id)
	assert.EqualValues(t, 1, step["stepCount"])

	status, _ = doJSON(t, app, http.MethodPut, "/api/work-flow/steps", fiber.Map{
		"flowId":   a.ID,
		"stepId":   id,
		"stepData": fiber.Map{"title": "Wait two days"},
	})
	require.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/work-flow/steps?flowId="+a.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	steps := body["steps"].([]interface{})
	require.Len(t, steps, 1)
	first := steps[0].(map[string]interface{})
	assert.Equal(t, "Wait two days", first["title"])
	assert.Equal(t, "days", first["waitUnit"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/work-flow/steps?flowId="+a.ID+"&stepId="+id, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/work-flow/steps?flowId="+a.ID+"&stepId="+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCreateStepRejectsUnknownType(t *testing.T) {
	app, s := newTestApp(t)
	a := seedFlow(t, s)

	status, body := doJSON(t, app, http.MethodPost, "/api/work-flow/steps", fiber.Map{
		"flowId": a.ID,
		"step":   fiber.Map{"stepType": "sendSms"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "step type")
}

func TestCreateServerValidatesFromEmail(t *testing.T) {
	app, s := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/servers", fiber.Map{
		"name":      "Primary",
		"fromEmail": "not-an-email",
		"smtpHost":  "smtp.example.com",
		"smtpPort":  587,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/servers", fiber.Map{
		"name":         "Primary",
		"fromEmail":    "news@example.com",
		"smtpHost":     "smtp.example.com",
		"smtpPort":     587,
		"smtpPassword": "secret",
	})
	require.Equal(t, fiber.StatusCreated, status)
	server := body["server"].(map[string]interface{})
	assert.NotContains(t, server, "smtpPassword")

	stored, err := s.ListServers(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEqual(t, "secret", stored[0].SMTPPassword)
	secrets, err := utils.NewCipher(testKey)
	require.NoError(t, err)
	plain, err := secrets.Decrypt(stored[0].SMTPPassword)
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)
}

func TestListsScopedToWebsite(t *testing.T) {
	app, s := newTestApp(t)
	a := seedFlow(t, s)

	status, body := doJSON(t, app, http.MethodGet, "/api/list?websiteId="+a.WebsiteID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["lists"], 1)

	status, body = doJSON(t, app, http.MethodGet, "/api/list?websiteId=other", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["lists"], 0)
}

func TestUnknownEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}
