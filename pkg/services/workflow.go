// Package services implements the editor operations the API exposes: workflow
// CRUD, step-tree transformations, the publish gate, and the read models
// (diagnostics, layout, paths, tokens).
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/lint"
	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/pathindex"
	"github.com/flowsmith/flowsmith/pkg/persistence"
	"github.com/flowsmith/flowsmith/pkg/templates"
	"github.com/flowsmith/flowsmith/pkg/tokens"
	"github.com/flowsmith/flowsmith/pkg/tree"
)

type Workflow struct {
	persistence persistence.Persistence
	idgen       models.IDGenerator
	linter      *lint.Linter
}

func NewWorkflow(p persistence.Persistence, idgen models.IDGenerator, linter *lint.Linter) *Workflow {
	if linter == nil {
		linter = lint.New()
	}

	return &Workflow{persistence: p, idgen: idgen, linter: linter}
}

// CreateWorkflowRequest creates a draft. Trigger defaults to manual when nil.
type CreateWorkflowRequest struct {
	Name        string
	Description string
	Owner       string
	Trigger     *models.Trigger
}

func (s *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	return s.persistence.Workflows(ctx)
}

func (s *Workflow) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowByID(ctx, id)
}

func (s *Workflow) Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	definition := models.NewDefinition()
	if req.Trigger != nil {
		definition.Trigger = *req.Trigger
	}

	now := time.Now()
	workflow := &models.Workflow{
		ID:          s.idgen.NewID(),
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		Status:      models.WorkflowStatusDraft,
		Definition:  definition,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save new workflow: %w", err)
	}

	return workflow, nil
}

// UpdateWorkflowRequest carries a partial update; nil fields are untouched.
// Definition replaces the whole tree: edits arrive as immutable snapshots.
type UpdateWorkflowRequest struct {
	Name        *string
	Description *string
	Trigger     *models.Trigger
	Definition  *models.Definition
}

func (s *Workflow) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		workflow.Name = *req.Name
	}

	if req.Description != nil {
		workflow.Description = *req.Description
	}

	if req.Definition != nil {
		workflow.Definition = req.Definition.Clone()
	}

	// After the definition swap, so a trigger in the same request applies to
	// the replacement tree.
	if req.Trigger != nil {
		workflow.Definition.Trigger = *req.Trigger
	}

	return s.save(ctx, workflow)
}

func (s *Workflow) Delete(ctx context.Context, id string) error {
	return s.persistence.DeleteWorkflow(ctx, id)
}

// Publish snapshots a draft into an immutable published copy. Lint errors
// refuse the publish; warnings do not.
func (s *Workflow) Publish(ctx context.Context, id string) (*models.Workflow, []lint.Diagnostic, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if workflow.Status != models.WorkflowStatusDraft {
		return nil, nil, fmt.Errorf("workflow %s: %w", id, ErrNotDraft)
	}

	diagnostics := s.linter.Lint(workflow.Definition)
	if lint.HasErrors(diagnostics) {
		return nil, diagnostics, fmt.Errorf("workflow %s: %w", id, ErrWorkflowInvalid)
	}

	now := time.Now()
	published := workflow.Clone()
	published.ID = s.idgen.NewID()
	published.Status = models.WorkflowStatusPublished
	published.PublishedID = ""
	published.PublishedAt = &now
	published.UpdatedAt = now

	if err := s.persistence.SaveWorkflow(ctx, published); err != nil {
		return nil, nil, fmt.Errorf("failed to save published workflow: %w", err)
	}

	workflow.PublishedID = published.ID
	workflow.UpdatedAt = now

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		// Roll the snapshot back so the draft never points at a ghost.
		_ = s.persistence.DeleteWorkflow(ctx, published.ID)

		return nil, nil, fmt.Errorf("failed to update draft with published id: %w", err)
	}

	return published, diagnostics, nil
}

func (s *Workflow) Diagnostics(ctx context.Context, id string) ([]lint.Diagnostic, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.linter.Lint(workflow.Definition), nil
}

func (s *Workflow) Layout(ctx context.Context, id string) (map[string]layout.Position, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return layout.Compute(workflow.Definition), nil
}

func (s *Workflow) Paths(ctx context.Context, id string) (map[string]string, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return pathindex.Build(workflow.Definition.Steps).IDToPath, nil
}

func (s *Workflow) Tokens(ctx context.Context, id, selectedStepID string, payloadFields []string) ([]string, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return tokens.Resolve(workflow.Definition, selectedStepID, payloadFields), nil
}

// InsertStepRequest instantiates a catalog template relative to a target. An
// empty target appends to the end of the root sequence.
type InsertStepRequest struct {
	Template string
	TargetID string
	Mode     tree.InsertMode
}

func (s *Workflow) InsertStep(ctx context.Context, id string, req InsertStepRequest) (*models.Workflow, string, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	template, ok := templates.Find(req.Template)
	if !ok || template.NewStep == nil {
		return nil, "", fmt.Errorf("template %q: %w", req.Template, ErrTemplateNotFound)
	}

	step := template.NewStep(s.idgen)

	if req.TargetID == "" {
		workflow.Definition.Steps = append(models.CloneSteps(workflow.Definition.Steps), step)
	} else {
		steps, inserted := tree.InsertStepRelative(workflow.Definition.Steps, req.TargetID, req.Mode, step)
		if !inserted {
			return nil, "", fmt.Errorf("target %q: %w", req.TargetID, ErrStepNotFound)
		}

		workflow.Definition.Steps = steps
	}

	saved, err := s.save(ctx, workflow)
	if err != nil {
		return nil, "", err
	}

	return saved, step.StepID(), nil
}

// UpdateStep replaces a step wholesale from its wire form. The step id is
// immutable: whatever id the payload carries is overridden by the path id.
func (s *Workflow) UpdateStep(ctx context.Context, id, stepID string, raw json.RawMessage) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	replacement, err := models.UnmarshalStep(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode replacement step: %w", err)
	}

	steps, updated := tree.UpdateStepByID(workflow.Definition.Steps, stepID, func(models.Step) models.Step {
		return withStepID(replacement, stepID)
	})
	if !updated {
		return nil, fmt.Errorf("step %q: %w", stepID, ErrStepNotFound)
	}

	workflow.Definition.Steps = steps

	return s.save(ctx, workflow)
}

func (s *Workflow) RemoveStep(ctx context.Context, id, stepID string) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	steps, removed := tree.RemoveStepByID(workflow.Definition.Steps, stepID)
	if !removed {
		return nil, fmt.Errorf("step %q: %w", stepID, ErrStepNotFound)
	}

	workflow.Definition.Steps = steps

	return s.save(ctx, workflow)
}

func (s *Workflow) DuplicateStep(ctx context.Context, id, stepID string) (*models.Workflow, string, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	steps, cloneID, found := tree.DuplicateStepByID(workflow.Definition.Steps, stepID, s.idgen)
	if !found {
		return nil, "", fmt.Errorf("step %q: %w", stepID, ErrStepNotFound)
	}

	workflow.Definition.Steps = steps

	saved, err := s.save(ctx, workflow)
	if err != nil {
		return nil, "", err
	}

	return saved, cloneID, nil
}

// MoveStep composes extract and insert-relative, refusing a move that would
// put a step inside its own subtree.
func (s *Workflow) MoveStep(ctx context.Context, id, stepID, targetID string, mode tree.InsertMode) (*models.Workflow, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	moving, found := tree.FindStepByID(workflow.Definition.Steps, stepID)
	if !found {
		return nil, fmt.Errorf("step %q: %w", stepID, ErrStepNotFound)
	}

	if tree.StepContainsID(moving, targetID) {
		return nil, fmt.Errorf("step %q into %q: %w", stepID, targetID, ErrInvalidMove)
	}

	steps, extracted, found := tree.ExtractStepByID(workflow.Definition.Steps, stepID)
	if !found {
		return nil, fmt.Errorf("step %q: %w", stepID, ErrStepNotFound)
	}

	steps, inserted := tree.InsertStepRelative(steps, targetID, mode, extracted)
	if !inserted {
		return nil, fmt.Errorf("target %q: %w", targetID, ErrStepNotFound)
	}

	workflow.Definition.Steps = steps

	return s.save(ctx, workflow)
}

func (s *Workflow) save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	workflow.UpdatedAt = time.Now()

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return workflow, nil
}

func withStepID(step models.Step, id string) models.Step {
	switch s := step.(type) {
	case *models.LogStep:
		s.ID = id
	case *models.CreateRecordStep:
		s.ID = id
	case *models.ConditionStep:
		s.ID = id
	}

	return step
}
