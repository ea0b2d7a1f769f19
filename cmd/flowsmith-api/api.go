// Package main provides the flowsmith editor API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowsmith/flowsmith/pkg/lint"
	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
	"github.com/flowsmith/flowsmith/pkg/services"
	"github.com/flowsmith/flowsmith/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence, tracer trace.Tracer) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, models.NewUUIDGenerator(), lint.New())
	handlers := web.NewAPIHandlers(workflowService, a.validate, a.tracer)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowsmith API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)

	// Read models recomputed from the current tree on every request.
	w.Get("/:id/diagnostics", handlers.GetDiagnostics)
	w.Get("/:id/layout", handlers.GetLayout)
	w.Get("/:id/paths", handlers.GetPaths)
	w.Get("/:id/tokens", handlers.GetTokens)

	// Step tree transformations.
	w.Post("/:id/steps", handlers.InsertStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.RemoveStep)
	w.Post("/:id/steps/:stepId/duplicate", handlers.DuplicateStep)
	w.Post("/:id/steps/:stepId/move", handlers.MoveStep)

	app.Get("/templates", handlers.SearchTemplates)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
