// Package web provides the HTTP handlers for the workflow editor API.
package web

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowsmith/flowsmith/pkg/otelhelper"
	"github.com/flowsmith/flowsmith/pkg/services"
	"github.com/flowsmith/flowsmith/pkg/templates"
	"github.com/flowsmith/flowsmith/pkg/tree"
)

type APIHandlers struct {
	workflows *services.Workflow
	validator *validator.Validate
	tracer    trace.Tracer
}

func NewAPIHandlers(workflows *services.Workflow, validate *validator.Validate, tracer trace.Tracer) *APIHandlers {
	if tracer == nil {
		tracer = otel.Tracer("flowsmith.web")
	}

	return &APIHandlers{
		workflows: workflows,
		validator: validate,
		tracer:    tracer,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflows.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflows.Create(c.Context(), services.CreateWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		Trigger:     req.Trigger,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflows.Update(c.Context(), c.Params("id"), services.UpdateWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     req.Trigger,
		Definition:  req.Definition,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflows.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "workflow.publish",
		attribute.String(otelhelper.WorkflowIDKey, c.Params("id")),
	)
	defer span.End()

	published, diagnostics, err := h.workflows.Publish(ctx, c.Params("id"))
	if err != nil {
		if services.IsWorkflowInvalid(err) {
			return invalidWorkflow(c, diagnostics)
		}

		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workflow":    published,
		"diagnostics": diagnostics,
	})
}

func (h *APIHandlers) GetDiagnostics(c fiber.Ctx) error {
	diagnostics, err := h.workflows.Diagnostics(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"diagnostics": diagnostics})
}

func (h *APIHandlers) GetLayout(c fiber.Ctx) error {
	positions, err := h.workflows.Layout(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"positions": positions})
}

func (h *APIHandlers) GetPaths(c fiber.Ctx) error {
	paths, err := h.workflows.Paths(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"paths": paths})
}

func (h *APIHandlers) GetTokens(c fiber.Ctx) error {
	resolved, err := h.workflows.Tokens(
		c.Context(),
		c.Params("id"),
		c.Query("step"),
		splitList(c.Query("payload_fields")),
	)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"tokens": resolved})
}

func (h *APIHandlers) InsertStep(c fiber.Ctx) error {
	var req InsertStepRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, stepID, err := h.workflows.InsertStep(c.Context(), c.Params("id"), services.InsertStepRequest{
		Template: req.Template,
		TargetID: req.TargetID,
		Mode:     tree.InsertMode(req.Mode),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workflow": workflow,
		"step_id":  stepID,
	})
}

func (h *APIHandlers) UpdateStep(c fiber.Ctx) error {
	var req UpdateStepRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflows.UpdateStep(c.Context(), c.Params("id"), c.Params("stepId"), req.Step)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) RemoveStep(c fiber.Ctx) error {
	workflow, err := h.workflows.RemoveStep(c.Context(), c.Params("id"), c.Params("stepId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DuplicateStep(c fiber.Ctx) error {
	workflow, stepID, err := h.workflows.DuplicateStep(c.Context(), c.Params("id"), c.Params("stepId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workflow": workflow,
		"step_id":  stepID,
	})
}

func (h *APIHandlers) MoveStep(c fiber.Ctx) error {
	var req MoveStepRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflows.MoveStep(c.Context(), c.Params("id"), c.Params("stepId"), req.TargetID, tree.InsertMode(req.Mode))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) SearchTemplates(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"templates": templates.Search(c.Query("q"), c.Query("category")),
	})
}

// splitList parses a comma-separated query value, e.g. ?payload_fields=id,status.
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
