package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/otelhelper"
)

const defaultTimeout = 30 * time.Second

// HTTPClient talks to the audit services over HTTP. All stage endpoints live
// behind one base URL.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHTTPClient creates a client for the audit services at baseURL.
func NewHTTPClient(baseURL string, logger *slog.Logger, tracer trace.Tracer) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger.With("module", "gateway"),
		tracer:  tracer,
	}
}

type submitRunRequest struct {
	Source  models.SourceSelection `json:"source"`
	Branch  string                 `json:"branch,omitempty"`
	Options map[string]any         `json:"options,omitempty"`
}

type submitRunResponse struct {
	JobID string `json:"job_id"`
}

func (c *HTTPClient) SubmitRun(ctx context.Context, source models.SourceSelection) (string, error) {
	ctx, span := c.startSpan(ctx, "gateway.submit_run",
		attribute.String(otelhelper.SourceTypeKey, string(source.Type)),
	)
	defer span.End()

	var resp submitRunResponse

	err := c.postJSON(ctx, "/submit-run", submitRunRequest{Source: source, Branch: source.Branch}, &resp)
	if err != nil {
		return "", otelhelper.RecordError(span, err)
	}

	if resp.JobID == "" {
		return "", otelhelper.RecordError(span, fmt.Errorf("%w: submit-run returned no job id", ErrBadResponse))
	}

	return resp.JobID, nil
}

func (c *HTTPClient) JobStatus(ctx context.Context, jobID string) (*models.JobState, error) {
	ctx, span := c.startSpan(ctx, "gateway.job_status",
		attribute.String(otelhelper.JobIDKey, jobID),
	)
	defer span.End()

	body, status, err := c.do(ctx, http.MethodGet, "/job/"+jobID, nil)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	if status == http.StatusNotFound {
		return nil, otelhelper.RecordError(span, fmt.Errorf("%w: %s", ErrJobNotFound, jobID))
	}

	if status != http.StatusOK {
		return nil, otelhelper.RecordError(span, fmt.Errorf("job status request failed with status %d", status))
	}

	state := &models.JobState{}

	err = json.Unmarshal(body, state)
	if err != nil {
		return nil, otelhelper.RecordError(span, fmt.Errorf("%w: %w", ErrBadResponse, err))
	}

	if state.ID == "" {
		state.ID = jobID
	}

	if state.Status == models.JobStatusCompleted {
		err = validateAnalysisPayload(body)
		if err != nil {
			return nil, otelhelper.RecordError(span, err)
		}
	}

	return state, nil
}

type readinessRequest struct {
	Scores models.ScoreCard `json:"scores"`
}

func (c *HTTPClient) ReadinessCheck(ctx context.Context, scores models.ScoreCard) (*models.ReadinessResult, error) {
	ctx, span := c.startSpan(ctx, "gateway.readiness_check")
	defer span.End()

	result := &models.ReadinessResult{}

	err := c.postJSON(ctx, "/readiness-check", readinessRequest{Scores: scores}, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	return result, nil
}

type complianceRequest struct {
	Profile string           `json:"profile"`
	Scores  models.ScoreCard `json:"scores"`
}

func (c *HTTPClient) ComplianceCheck(ctx context.Context, profile string, scores models.ScoreCard) (*models.ComplianceResult, error) {
	ctx, span := c.startSpan(ctx, "gateway.compliance_check",
		attribute.String(otelhelper.ProfileKey, profile),
	)
	defer span.End()

	result := &models.ComplianceResult{}

	err := c.postJSON(ctx, "/compliance-check", complianceRequest{Profile: profile, Scores: scores}, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	return result, nil
}

type costRequest struct {
	Metrics map[string]float64 `json:"metrics"`
	Rate    float64            `json:"rate"`
}

func (c *HTTPClient) CostEstimate(ctx context.Context, metrics map[string]float64, rate float64) (*models.CostResult, error) {
	ctx, span := c.startSpan(ctx, "gateway.cost_estimate")
	defer span.End()

	result := &models.CostResult{}

	err := c.postJSON(ctx, "/cost-estimate", costRequest{Metrics: metrics, Rate: rate}, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	return result, nil
}

type generateDocumentRequest struct {
	DocType     models.DocumentType `json:"doc_type"`
	Format      string              `json:"format"`
	ContextData map[string]any      `json:"context_data,omitempty"`
}

func (c *HTTPClient) GenerateDocument(ctx context.Context, docType models.DocumentType, format string, contextData map[string]any) (*models.GeneratedDocument, error) {
	ctx, span := c.startSpan(ctx, "gateway.generate_document",
		attribute.String(otelhelper.DocumentTypeKey, string(docType)),
	)
	defer span.End()

	result := &models.GeneratedDocument{}

	err := c.postJSON(ctx, "/generate-document", generateDocumentRequest{
		DocType:     docType,
		Format:      format,
		ContextData: contextData,
	}, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	result.Type = docType

	if result.Format == "" {
		result.Format = format
	}

	return result, nil
}

type compareRequest struct {
	ContractID string           `json:"contract_id"`
	Scores     models.ScoreCard `json:"scores"`
}

func (c *HTTPClient) CompareContract(ctx context.Context, contractID string, scores models.ScoreCard) (*models.ComparisonResult, error) {
	ctx, span := c.startSpan(ctx, "gateway.compare_contract",
		attribute.String(otelhelper.ContractIDKey, contractID),
	)
	defer span.End()

	result := &models.ComparisonResult{}

	err := c.postJSON(ctx, "/compare-contract", compareRequest{ContractID: contractID, Scores: scores}, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	return result, nil
}

func (c *HTTPClient) DocumentRequirements(ctx context.Context, classification string) (*models.DocumentRequirements, error) {
	ctx, span := c.startSpan(ctx, "gateway.document_requirements",
		attribute.String(otelhelper.ClassificationKey, classification),
	)
	defer span.End()

	body, status, err := c.do(ctx, http.MethodGet, "/document-requirements/"+classification, nil)
	if err != nil {
		return nil, otelhelper.RecordError(span, err)
	}

	if status != http.StatusOK {
		return nil, otelhelper.RecordError(span, fmt.Errorf("document requirements request failed with status %d", status))
	}

	result := &models.DocumentRequirements{}

	err = json.Unmarshal(body, result)
	if err != nil {
		return nil, otelhelper.RecordError(span, fmt.Errorf("%w: %w", ErrBadResponse, err))
	}

	return result, nil
}

// postJSON posts the request body and decodes a 200 response into out.
func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	body, status, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return fmt.Errorf("%s failed with status %d", path, status)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadResponse, path, err)
	}

	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", path, err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.ErrorContext(ctx, "Failed to close response body", "path", path, "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	return body, resp.StatusCode, nil
}

func (c *HTTPClient) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, c.tracer, name, attrs...)
}
