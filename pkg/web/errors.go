package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/auditflow/auditflow/pkg/steps"
	"github.com/auditflow/auditflow/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// isStepError checks the transition engine's validation errors.
func isStepError(err error) bool {
	return errors.Is(err, steps.ErrUnknownStep) ||
		errors.Is(err, steps.ErrNotSuccessor) ||
		errors.Is(err, steps.ErrPreconditionNotMet) ||
		errors.Is(err, steps.ErrNotVisited) ||
		errors.Is(err, steps.ErrForwardRewind)
}

// handleControllerError provides typed error handling for the workflow
// controller's error taxonomy.
func handleControllerError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrJobActive):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("job_active").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, workflow.ErrRunReset):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("run_reset").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case workflow.IsValidationError(err), isStepError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case workflow.IsStageCallError(err):
		// Recoverable: the same action may be retried.
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("stage_call_failed").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
