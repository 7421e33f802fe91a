// Package gateway defines the client surface for the remote audit services:
// the long-running analysis engine plus the one-shot readiness, compliance,
// cost, document and comparison services.
package gateway

import (
	"context"
	"errors"

	"github.com/auditflow/auditflow/pkg/models"
)

var (
	// ErrJobNotFound indicates the analysis engine does not know the job id.
	// Resume logic treats this as a stale session.
	ErrJobNotFound = errors.New("job not found")

	// ErrBadResponse indicates the remote service answered with a payload
	// that does not match the expected shape.
	ErrBadResponse = errors.New("malformed service response")
)

// Client is the orchestration engine's only window to the outside world.
// Implementations must be safe for concurrent use.
type Client interface {
	// SubmitRun starts the long-running analysis job and returns its id.
	SubmitRun(ctx context.Context, source models.SourceSelection) (string, error)

	// JobStatus fetches the current state of a job. A missing job yields
	// ErrJobNotFound.
	JobStatus(ctx context.Context, jobID string) (*models.JobState, error)

	// ReadinessCheck evaluates readiness from the analysis scores.
	ReadinessCheck(ctx context.Context, scores models.ScoreCard) (*models.ReadinessResult, error)

	// ComplianceCheck runs the compliance profile against the scores.
	ComplianceCheck(ctx context.Context, profile string, scores models.ScoreCard) (*models.ComplianceResult, error)

	// CostEstimate prices the remediation work.
	CostEstimate(ctx context.Context, metrics map[string]float64, rate float64) (*models.CostResult, error)

	// GenerateDocument renders one document of the given type and format.
	GenerateDocument(ctx context.Context, docType models.DocumentType, format string, contextData map[string]any) (*models.GeneratedDocument, error)

	// CompareContract compares the audit scores against a contract baseline.
	CompareContract(ctx context.Context, contractID string, scores models.ScoreCard) (*models.ComparisonResult, error)

	// DocumentRequirements looks up which documents a repository
	// classification calls for.
	DocumentRequirements(ctx context.Context, classification string) (*models.DocumentRequirements, error)
}
