package models

// WorkflowState is the single mutable aggregate for one pipeline run. It is
// owned exclusively by the workflow controller; everything outside the
// controller observes read-only snapshots.
type WorkflowState struct {
	Step         Step                               `json:"step"`
	HighestStep  Step                               `json:"highest_step"` // Furthest step reached, bounds direct step selection
	Source       SourceSelection                    `json:"source"`
	ActiveJobID  string                             `json:"active_job_id,omitempty"`
	Analysis     *AnalysisResult                    `json:"analysis,omitempty"`
	Readiness    *ReadinessResult                   `json:"readiness,omitempty"`
	Compliance   *ComplianceResult                  `json:"compliance,omitempty"`
	Cost         *CostResult                        `json:"cost,omitempty"`
	Comparison   *ComparisonResult                  `json:"comparison,omitempty"`
	Documents    map[DocumentType]GeneratedDocument `json:"documents,omitempty"`
	Requirements *DocumentRequirements              `json:"requirements,omitempty"`
	Progress     []SubStage                         `json:"progress,omitempty"`
	Error        string                             `json:"error,omitempty"`
	Loading      bool                               `json:"loading"`
}

// NewWorkflowState returns the default state for a fresh run.
func NewWorkflowState() WorkflowState {
	return WorkflowState{
		Step:        StepSetup,
		HighestStep: StepSetup,
		Documents:   make(map[DocumentType]GeneratedDocument),
		Progress:    DefaultSubStages(),
	}
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (s WorkflowState) Clone() WorkflowState {
	out := s

	if s.Documents != nil {
		out.Documents = make(map[DocumentType]GeneratedDocument, len(s.Documents))
		for k, v := range s.Documents {
			out.Documents[k] = v
		}
	}

	if s.Progress != nil {
		out.Progress = make([]SubStage, len(s.Progress))
		copy(out.Progress, s.Progress)
	}

	if s.Analysis != nil {
		analysis := *s.Analysis
		out.Analysis = &analysis
	}

	if s.Readiness != nil {
		readiness := *s.Readiness
		out.Readiness = &readiness
	}

	if s.Compliance != nil {
		compliance := *s.Compliance
		out.Compliance = &compliance
	}

	if s.Cost != nil {
		cost := *s.Cost
		out.Cost = &cost
	}

	if s.Comparison != nil {
		comparison := *s.Comparison
		out.Comparison = &comparison
	}

	if s.Requirements != nil {
		requirements := *s.Requirements
		out.Requirements = &requirements
	}

	return out
}

// Visited reports whether the step has been reached at some point in the
// current run. Direct step selection is limited to visited steps.
func (s WorkflowState) Visited(step Step) bool {
	return step.Valid() && step.Index() <= s.HighestStep.Index()
}
