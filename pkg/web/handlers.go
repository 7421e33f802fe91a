package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/workflow"
)

type APIHandlers struct {
	controller *workflow.Controller
	validator  *validator.Validate
}

func NewAPIHandlers(controller *workflow.Controller, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		controller: controller,
		validator:  validator,
	}
}

func (h *APIHandlers) GetState(c fiber.Ctx) error {
	return c.JSON(h.controller.Snapshot())
}

func (h *APIHandlers) SetSource(c fiber.Ctx) error {
	var req SetSourceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.controller.SetSource(c.Context(), req.Selection()); err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(h.controller.Snapshot())
}

func (h *APIHandlers) SubmitRun(c fiber.Ctx) error {
	jobID, err := h.controller.SubmitRun(c.Context())
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(SubmitRunResponse{JobID: jobID})
}

func (h *APIHandlers) AdvanceStep(c fiber.Ctx) error {
	step, err := h.controller.Advance(c.Context())
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(StepResponse{Step: step})
}

func (h *APIHandlers) RewindStep(c fiber.Ctx) error {
	var req StepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.controller.Rewind(c.Context(), models.Step(req.Step)); err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(StepResponse{Step: h.controller.Snapshot().Step})
}

func (h *APIHandlers) SelectStep(c fiber.Ctx) error {
	var req StepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.controller.SelectStep(c.Context(), models.Step(req.Step)); err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(StepResponse{Step: h.controller.Snapshot().Step})
}

func (h *APIHandlers) RunReadiness(c fiber.Ctx) error {
	result, err := h.controller.RunReadiness(c.Context())
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) RunCompliance(c fiber.Ctx) error {
	var req ComplianceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.controller.RunCompliance(c.Context(), req.Profile)
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) RunCost(c fiber.Ctx) error {
	var req CostRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.controller.RunCost(c.Context(), req.Rate)
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GenerateDocument(c fiber.Ctx) error {
	var req DocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	document, err := h.controller.GenerateDocument(c.Context(), models.DocumentType(req.Type), req.Format, req.Context)
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(document)
}

func (h *APIHandlers) RunComparison(c fiber.Ctx) error {
	var req ComparisonRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.controller.RunComparison(c.Context(), req.ContractID)
	if err != nil {
		return handleControllerError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Reset(c fiber.Ctx) error {
	if err := h.controller.Reset(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(h.controller.Snapshot())
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "AuditFlow API is healthy"
	httpStatus := http.StatusOK

	sessionErr := h.controller.HealthCheck(c.Context())
	if sessionErr != nil {
		status = "unhealthy"
		message = "AuditFlow API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	sessionCheck := "ok"
	if sessionErr != nil {
		sessionCheck = sessionErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"session": sessionCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
