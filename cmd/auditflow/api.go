// Package main provides the AuditFlow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/auditflow/auditflow/pkg/web"
	"github.com/auditflow/auditflow/pkg/workflow"
)

type API struct {
	logger     *slog.Logger
	controller *workflow.Controller
	validate   *validator.Validate
}

func NewAPI(logger *slog.Logger, controller *workflow.Controller) *API {
	return &API{
		logger:     logger,
		controller: controller,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.controller, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("AuditFlow API")
	})

	app.Get("/state", handlers.GetState)
	app.Put("/source", handlers.SetSource)
	app.Post("/runs", handlers.SubmitRun)
	app.Post("/reset", handlers.Reset)

	s := app.Group("/steps")
	s.Post("/advance", handlers.AdvanceStep)
	s.Post("/rewind", handlers.RewindStep)
	s.Post("/select", handlers.SelectStep)

	st := app.Group("/stages")
	st.Post("/readiness", handlers.RunReadiness)
	st.Post("/compliance", handlers.RunCompliance)
	st.Post("/cost", handlers.RunCost)
	st.Post("/comparison", handlers.RunComparison)

	app.Post("/documents", handlers.GenerateDocument)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
