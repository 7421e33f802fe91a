package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/testutil"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return NewHTTPClient(server.URL, logger, nil)
}

func TestSubmitRun(t *testing.T) {
	var captured submitRunRequest

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submit-run", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	}))

	source := testutil.CreateTestSource()

	jobID, err := client.SubmitRun(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
	assert.Equal(t, source.URL, captured.Source.URL)
	assert.Equal(t, "main", captured.Branch)
}

func TestSubmitRun_MissingJobID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := client.SubmitRun(t.Context(), testutil.CreateTestSource())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestJobStatus_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.JobStatus(t.Context(), "job-gone")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobStatus_Running(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/job/job-1", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "running"})
	}))

	state, err := client.JobStatus(t.Context(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, state.Status)
	assert.Equal(t, "job-1", state.ID, "id is filled in when the response omits it")
}

func TestJobStatus_CompletedWithValidPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(testutil.CreateCompletedJob(func(j *models.JobState) {
			j.ID = "job-1"
		}))
	}))

	state, err := client.JobStatus(t.Context(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, state.Payload)
	assert.Equal(t, "acme/billing", state.Payload.RepositoryName)
}

func TestJobStatus_CompletedWithoutScoresRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Completed but the payload is missing the scores object.
		_, _ = w.Write([]byte(`{"id":"job-1","status":"completed","payload":{"status":"completed"}}`))
	}))

	_, err := client.JobStatus(t.Context(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestJobStatus_CompletedWithoutPayloadRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"job-1","status":"completed"}`))
	}))

	_, err := client.JobStatus(t.Context(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestReadinessCheck(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/readiness-check", r.URL.Path)

		var req readinessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InEpsilon(t, 72.5, req.Scores.Health, 0.001)

		_ = json.NewEncoder(w).Encode(models.ReadinessResult{Level: "ready", Score: 0.9})
	}))

	result, err := client.ReadinessCheck(t.Context(), testutil.CreateTestScores())
	require.NoError(t, err)
	assert.Equal(t, "ready", result.Level)
}

func TestComplianceCheck_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ComplianceCheck(t.Context(), "strict", testutil.CreateTestScores())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCostEstimate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req costRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InEpsilon(t, 150.0, req.Rate, 0.001)

		_ = json.NewEncoder(w).Encode(models.CostResult{Currency: "USD", Rate: req.Rate, Estimate: 6000})
	}))

	result, err := client.CostEstimate(t.Context(), map[string]float64{"debt_hours": 40}, 150)
	require.NoError(t, err)
	assert.InEpsilon(t, 6000.0, result.Estimate, 0.001)
}

func TestGenerateDocument_FillsTypeAndFormat(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"content": "# Audit Report"})
	}))

	document, err := client.GenerateDocument(t.Context(), models.DocumentTypeAuditReport, "markdown", nil)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeAuditReport, document.Type)
	assert.Equal(t, "markdown", document.Format)
	assert.Equal(t, "# Audit Report", document.Content)
}

func TestCompareContract(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req compareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "contract-7", req.ContractID)

		_ = json.NewEncoder(w).Encode(models.ComparisonResult{ContractID: req.ContractID, Aligned: false, Deltas: []models.ComparisonDelta{
			{Field: "health", Expected: 80, Actual: 72.5},
		}})
	}))

	result, err := client.CompareContract(t.Context(), "contract-7", testutil.CreateTestScores())
	require.NoError(t, err)
	assert.False(t, result.Aligned)
	require.Len(t, result.Deltas, 1)
}

func TestDocumentRequirements(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/document-requirements/service", r.URL.Path)

		_ = json.NewEncoder(w).Encode(models.DocumentRequirements{
			Classification: "service",
			Required:       []models.DocumentType{models.DocumentTypeAuditReport, models.DocumentTypeInvoice},
		})
	}))

	result, err := client.DocumentRequirements(t.Context(), "service")
	require.NoError(t, err)
	assert.Len(t, result.Required, 2)
}

func TestUnreachableServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	client := NewHTTPClient("http://127.0.0.1:1", logger, nil)

	_, err := client.JobStatus(t.Context(), "job-1")
	require.Error(t, err)
}
