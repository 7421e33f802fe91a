// Package web provides the HTTP surface that UIs use to drive the audit
// pipeline engine.
package web

import "github.com/auditflow/auditflow/pkg/models"

// SetSourceRequest is the request body for updating the source selection.
type SetSourceRequest struct {
	Type       string `json:"type"                  validate:"required,oneof=git local"`
	URL        string `json:"url,omitempty"`
	Path       string `json:"path,omitempty"`
	Branch     string `json:"branch,omitempty"`
	RegionMode string `json:"region_mode,omitempty" validate:"omitempty,oneof=full selected"`
}

// Selection converts the request into the domain source selection.
func (r SetSourceRequest) Selection() models.SourceSelection {
	return models.SourceSelection{
		Type:       models.SourceType(r.Type),
		URL:        r.URL,
		Path:       r.Path,
		Branch:     r.Branch,
		RegionMode: models.RegionMode(r.RegionMode),
	}
}

// StepRequest is the request body for rewind and direct step selection.
type StepRequest struct {
	Step string `json:"step" validate:"required"`
}

// ComplianceRequest is the request body for the compliance stage call.
type ComplianceRequest struct {
	Profile string `json:"profile" validate:"required"`
}

// CostRequest is the request body for the cost stage call.
type CostRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

// ComparisonRequest is the request body for the contract comparison call.
type ComparisonRequest struct {
	ContractID string `json:"contract_id" validate:"required"`
}

// DocumentRequest is the request body for document generation.
type DocumentRequest struct {
	Type    string         `json:"type"              validate:"required"`
	Format  string         `json:"format"            validate:"required,oneof=pdf html markdown"`
	Context map[string]any `json:"context,omitempty"`
}

// SubmitRunResponse carries the id of the submitted analysis job.
type SubmitRunResponse struct {
	JobID string `json:"job_id"`
}

// StepResponse carries the pipeline step after a navigation action.
type StepResponse struct {
	Step models.Step `json:"step"`
}
