package models

import "time"

// ScoreCard carries the scores produced by the analysis engine. The engine
// treats them as opaque inputs for the downstream stage calls.
type ScoreCard struct {
	Health  float64            `json:"health"`
	Debt    float64            `json:"debt"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// AnalysisResult is the payload of a completed analysis job.
type AnalysisResult struct {
	Status         JobStatus `json:"status"`
	RepositoryName string    `json:"repository_name,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Scores         ScoreCard `json:"scores"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ReadinessResult is produced by the readiness check that runs automatically
// once analysis completes.
type ReadinessResult struct {
	Level    string    `json:"level"`
	Score    float64   `json:"score"`
	Findings []string  `json:"findings,omitempty"`
	Checked  time.Time `json:"checked_at"`
}

// ComplianceViolation is a single rule violation reported by the compliance
// checker.
type ComplianceViolation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Detail   string `json:"detail,omitempty"`
}

// ComplianceResult is the outcome of a compliance check for one profile.
type ComplianceResult struct {
	Profile    string                `json:"profile"`
	Passed     bool                  `json:"passed"`
	Violations []ComplianceViolation `json:"violations,omitempty"`
}

// CostResult is the remediation cost estimate.
type CostResult struct {
	Currency  string             `json:"currency"`
	Rate      float64            `json:"rate"`
	Estimate  float64            `json:"estimate"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// ComparisonDelta is one divergence between the audit scores and the
// contract baseline.
type ComparisonDelta struct {
	Field    string  `json:"field"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
}

// ComparisonResult is the outcome of comparing the audit against a contract.
type ComparisonResult struct {
	ContractID string            `json:"contract_id"`
	Aligned    bool              `json:"aligned"`
	Deltas     []ComparisonDelta `json:"deltas,omitempty"`
	Summary    string            `json:"summary,omitempty"`
}

// DocumentType identifies a generated document kind. Re-generating a type
// overwrites the previous entry.
type DocumentType string

const (
	DocumentTypeAuditReport     DocumentType = "audit_report"
	DocumentTypeInvoice         DocumentType = "invoice"
	DocumentTypeRemediationPlan DocumentType = "remediation_plan"
	DocumentTypeComplianceCert  DocumentType = "compliance_certificate"
)

// GeneratedDocument is one entry in the append-only document set.
type GeneratedDocument struct {
	Type        DocumentType `json:"type"`
	Format      string       `json:"format"`
	Content     string       `json:"content,omitempty"`
	DownloadRef string       `json:"download_ref,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// DocumentRequirements lists the document types a repository classification
// calls for. Fetched eagerly when a completed analysis carries a
// classification.
type DocumentRequirements struct {
	Classification string         `json:"classification"`
	Required       []DocumentType `json:"required"`
}
