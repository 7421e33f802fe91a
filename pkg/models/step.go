// Package models defines the core domain models for the audit pipeline.
package models

// Step identifies one stage of the audit pipeline.
type Step string

const (
	StepSetup      Step = "setup"      // Source selection and run submission
	StepReadiness  Step = "readiness"  // Automatic readiness evaluation
	StepAudit      Step = "audit"      // Detailed review of the analysis result
	StepCompliance Step = "compliance" // Compliance check against a profile
	StepCost       Step = "cost"       // Remediation cost estimate
	StepDocuments  Step = "documents"  // Document generation (skippable)
	StepCompare    Step = "compare"    // Contract comparison
	StepComplete   Step = "complete"   // Terminal
)

// stepOrder is the canonical pipeline ordering. Index in this slice is the
// total order used by the transition engine.
var stepOrder = []Step{
	StepSetup,
	StepReadiness,
	StepAudit,
	StepCompliance,
	StepCost,
	StepDocuments,
	StepCompare,
	StepComplete,
}

// StepOrder returns the ordered pipeline steps.
func StepOrder() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)

	return out
}

// Index returns the position of the step in the pipeline, or -1 for an
// unknown step.
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}

	return -1
}

// Valid reports whether the step is one of the eight pipeline stages.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Next returns the immediate successor of the step. The second return value
// is false for the terminal step and for unknown steps.
func (s Step) Next() (Step, bool) {
	idx := s.Index()
	if idx < 0 || idx == len(stepOrder)-1 {
		return "", false
	}

	return stepOrder[idx+1], true
}

// Terminal reports whether the step has no successor.
func (s Step) Terminal() bool {
	return s == StepComplete
}
