package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/auditflow/auditflow/pkg/mocks"
	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/poller"
	"github.com/auditflow/auditflow/pkg/session"
	"github.com/auditflow/auditflow/pkg/testutil"
	"github.com/auditflow/auditflow/pkg/web"
	"github.com/auditflow/auditflow/pkg/workflow"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.MockGateway, *workflow.Controller) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	gw := &mocks.MockGateway{}
	sessions := session.NewRepository(session.NewMemoryStore())
	jobPoller := poller.NewWithClock(gw, clockwork.NewFakeClock(), logger)
	controller := workflow.NewController(gw, sessions, jobPoller, nil, logger)

	handlers := web.NewAPIHandlers(controller, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Get("/state", handlers.GetState)
	app.Put("/source", handlers.SetSource)
	app.Post("/runs", handlers.SubmitRun)
	app.Post("/reset", handlers.Reset)
	app.Post("/steps/advance", handlers.AdvanceStep)
	app.Post("/steps/rewind", handlers.RewindStep)
	app.Post("/steps/select", handlers.SelectStep)
	app.Post("/stages/readiness", handlers.RunReadiness)
	app.Post("/stages/compliance", handlers.RunCompliance)
	app.Post("/stages/cost", handlers.RunCost)
	app.Post("/stages/comparison", handlers.RunComparison)
	app.Post("/documents", handlers.GenerateDocument)
	app.Get("/health", handlers.HealthCheck)

	return app, gw, controller
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, payload
}

func TestGetState_InitialState(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/state", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, models.StepSetup, state.Step)
	assert.False(t, state.Loading)
}

func TestSetSource(t *testing.T) {
	app, _, controller := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/source", web.SetSourceRequest{
		Type: "git",
		URL:  "https://example.com/acme/billing.git",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://example.com/acme/billing.git", controller.Snapshot().Source.URL)
}

func TestSetSource_ValidationError(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPut, "/source", web.SetSourceRequest{Type: "svn"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "validation_error")
}

func TestSubmitRun(t *testing.T) {
	app, gw, controller := setupTestApp(t)
	require.NoError(t, controller.SetSource(t.Context(), testutil.CreateTestSource()))

	gw.On("SubmitRun", mock.Anything, mock.Anything).Return("job-1", nil).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/runs", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted web.SubmitRunResponse
	require.NoError(t, json.Unmarshal(body, &submitted))
	assert.Equal(t, "job-1", submitted.JobID)
}

func TestSubmitRun_WithoutSource(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/runs", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "validation_error")
}

func TestSubmitRun_ConflictWhileActive(t *testing.T) {
	app, gw, controller := setupTestApp(t)
	require.NoError(t, controller.SetSource(t.Context(), testutil.CreateTestSource()))

	gw.On("SubmitRun", mock.Anything, mock.Anything).Return("job-1", nil).Once()

	resp, _ := doJSON(t, app, http.MethodPost, "/runs", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/runs", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "job_active")
}

func TestSubmitRun_GatewayDown(t *testing.T) {
	app, gw, controller := setupTestApp(t)
	require.NoError(t, controller.SetSource(t.Context(), testutil.CreateTestSource()))

	gw.On("SubmitRun", mock.Anything, mock.Anything).Return("", assert.AnError).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/runs", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "stage_call_failed")
}

func TestAdvanceStep_BlockedAtSetup(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/steps/advance", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "validation_error")
}

func TestRewindStep(t *testing.T) {
	app, _, _ := setupTestApp(t)

	// Rewinding to the current step is a valid no-op.
	resp, body := doJSON(t, app, http.MethodPost, "/steps/rewind", web.StepRequest{Step: "setup"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var step web.StepResponse
	require.NoError(t, json.Unmarshal(body, &step))
	assert.Equal(t, models.StepSetup, step.Step)
}

func TestSelectStep_NotVisited(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/steps/select", web.StepRequest{Step: "cost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunCompliance_WrongStep(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/stages/compliance", web.ComplianceRequest{Profile: "strict"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "validation_error")
}

func TestRunCost_MissingRate(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/stages/cost", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateDocument_BadFormat(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/documents", web.DocumentRequest{
		Type:   "invoice",
		Format: "docx",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReset(t *testing.T) {
	app, _, controller := setupTestApp(t)
	require.NoError(t, controller.SetSource(t.Context(), testutil.CreateTestSource()))

	resp, body := doJSON(t, app, http.MethodPost, "/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.True(t, state.Source.Empty())
	assert.Equal(t, models.StepSetup, state.Step)
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}
