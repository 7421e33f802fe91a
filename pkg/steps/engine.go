// Package steps implements the transition engine for the ordered audit
// pipeline. Forward movement is gated by per-step data preconditions;
// rewinding to an already-visited step is always allowed and never clears
// downstream results.
package steps

import (
	"errors"
	"fmt"

	"github.com/auditflow/auditflow/pkg/models"
)

var (
	// ErrUnknownStep indicates a step outside the pipeline ordering.
	ErrUnknownStep = errors.New("unknown step")

	// ErrNotSuccessor indicates an advance target that is not the immediate
	// successor of the current step.
	ErrNotSuccessor = errors.New("step is not the immediate successor")

	// ErrPreconditionNotMet indicates the current step's data requirement is
	// not satisfied.
	ErrPreconditionNotMet = errors.New("step precondition not met")

	// ErrNotVisited indicates a direct selection of a step the run has not
	// reached yet.
	ErrNotVisited = errors.New("step not visited yet")

	// ErrForwardRewind indicates a rewind target ahead of the current step.
	ErrForwardRewind = errors.New("cannot rewind forward")
)

// Gate returns the error that blocks leaving the given state's current step,
// or nil when the precondition holds. The documents step carries no
// precondition: generating documents is optional.
func Gate(state models.WorkflowState) error {
	switch state.Step {
	case models.StepSetup, models.StepAudit:
		if state.Analysis == nil || state.Analysis.Status != models.JobStatusCompleted {
			return fmt.Errorf("%w: completed analysis result required to leave %s", ErrPreconditionNotMet, state.Step)
		}
	case models.StepReadiness:
		if state.Readiness == nil {
			return fmt.Errorf("%w: readiness result required", ErrPreconditionNotMet)
		}
	case models.StepCompliance:
		if state.Compliance == nil {
			return fmt.Errorf("%w: compliance result required", ErrPreconditionNotMet)
		}
	case models.StepCost:
		if state.Cost == nil {
			return fmt.Errorf("%w: cost estimate required", ErrPreconditionNotMet)
		}
	case models.StepDocuments:
		// Skippable.
	case models.StepCompare:
		if state.Comparison == nil {
			return fmt.Errorf("%w: comparison result required", ErrPreconditionNotMet)
		}
	case models.StepComplete:
		// Terminal, nothing to leave for.
	}

	return nil
}

// CanAdvance reports whether the state may move from its current step to the
// given target via the primary continue action.
func CanAdvance(state models.WorkflowState, to models.Step) bool {
	return Advance(state, to) == nil
}

// Advance validates a forward transition to the immediate successor. It does
// not mutate state; the controller applies the step change after a nil
// return. Advancing into the terminal step repeatedly is a no-op level
// validation: once at complete, advancing to complete stays valid.
func Advance(state models.WorkflowState, to models.Step) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, to)
	}

	if state.Step.Terminal() {
		if to == state.Step {
			return nil
		}

		return fmt.Errorf("%w: %s has no successor", ErrNotSuccessor, state.Step)
	}

	next, ok := state.Step.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: cannot advance from %s to %s", ErrNotSuccessor, state.Step, to)
	}

	if err := Gate(state); err != nil {
		return err
	}

	return nil
}

// Rewind validates a backward transition. Any step at or before the current
// one is permitted; re-inspection is non-destructive.
func Rewind(state models.WorkflowState, to models.Step) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, to)
	}

	if to.Index() > state.Step.Index() {
		return fmt.Errorf("%w: %s is ahead of %s", ErrForwardRewind, to, state.Step)
	}

	return nil
}

// Select validates direct navigation to an arbitrary step. Unlike Advance it
// skips the precondition gate, but only already-visited steps are reachable
// this way.
func Select(state models.WorkflowState, to models.Step) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, to)
	}

	if !state.Visited(to) {
		return fmt.Errorf("%w: %s", ErrNotVisited, to)
	}

	return nil
}
