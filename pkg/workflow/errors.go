// Package workflow implements the orchestration core of the audit pipeline:
// the state container, the step transitions, and the resume logic.
package workflow

import (
	"errors"
	"fmt"
)

// Validation errors: a precondition is not met. Reported inline to the
// caller; loading and persisted state are untouched.
var (
	ErrSourceRequired = errors.New("source selection required")
	ErrInvalidSource  = errors.New("invalid source selection")
	ErrSourceFrozen   = errors.New("source cannot change while a job is active")
	ErrJobActive      = errors.New("a job is already active")
	ErrNoAnalysis     = errors.New("no analysis result available")
	ErrWrongStep      = errors.New("operation not available at the current step")
)

// Run-fatal errors: the current run cannot continue; the user starts a new
// run or retries submission.
var (
	ErrJobFailed = errors.New("analysis job failed")
)

// ErrRunReset indicates the workflow was reset while an operation was in
// flight; the late result has been discarded.
var ErrRunReset = errors.New("run was reset")

// ErrStageCall marks a recoverable one-shot stage failure: loading resets,
// the step does not advance, the same action may be retried.
var ErrStageCall = errors.New("stage call failed")

// StateError wraps workflow errors with operation context.
type StateError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *StateError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func (e *StateError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a client-side validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrSourceRequired) ||
		errors.Is(err, ErrInvalidSource) ||
		errors.Is(err, ErrSourceFrozen) ||
		errors.Is(err, ErrJobActive) ||
		errors.Is(err, ErrNoAnalysis) ||
		errors.Is(err, ErrWrongStep)
}

// IsStageCallError checks if an error is a recoverable stage call failure.
func IsStageCallError(err error) bool {
	return errors.Is(err, ErrStageCall)
}

// NewValidationError creates a validation error with context.
func NewValidationError(op, code, message string, err error) *StateError {
	return &StateError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
