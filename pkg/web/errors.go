package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/flowsmith/flowsmith/pkg/lint"
	"github.com/flowsmith/flowsmith/pkg/persistence"
	"github.com/flowsmith/flowsmith/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// invalidWorkflow reports a refused publish together with the diagnostics
// that refused it.
func invalidWorkflow(c fiber.Ctx, diagnostics []lint.Diagnostic) error {
	problem := problems.NewStatusProblem(fiber.StatusUnprocessableEntity).
		WithInstance(c.Path()).
		WithType("workflow_invalid").
		WithDetail("workflow has validation errors")

	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"problem":     problem,
		"diagnostics": diagnostics,
	})
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow not found")

	case services.IsStepNotFound(err):
		return notFound(c, "step not found")

	case services.IsTemplateNotFound(err):
		return badRequest(c, err.Error())

	case services.IsInvalidMove(err):
		return badRequest(c, err.Error())

	case services.IsNotDraft(err):
		problem := problems.NewStatusProblem(fiber.StatusConflict).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		return internalError(c, err)
	}
}
