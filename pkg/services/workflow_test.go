package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/lint"
	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
	"github.com/flowsmith/flowsmith/pkg/persistence/file"
	"github.com/flowsmith/flowsmith/pkg/tree"
)

func newService(t *testing.T) *Workflow {
	t.Helper()

	store, err := file.NewPersistence(t.TempDir(), slog.Default())
	require.NoError(t, err)

	return NewWorkflow(store, models.NewSequentialIDGenerator("id"), lint.New())
}

func createDraft(t *testing.T, svc *Workflow) *models.Workflow {
	t.Helper()

	workflow, err := svc.Create(context.Background(), CreateWorkflowRequest{
		Name:  "Test workflow",
		Owner: "user-1",
	})
	require.NoError(t, err)

	return workflow
}

func TestWorkflowService_CreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created := createDraft(t, svc)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.Equal(t, models.TriggerKindManual, created.Definition.Trigger.Kind)
	assert.Empty(t, created.Definition.Steps)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, loaded.Name)

	workflows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestWorkflowService_CreateWithTrigger(t *testing.T) {
	svc := newService(t)

	workflow, err := svc.Create(context.Background(), CreateWorkflowRequest{
		Name:    "On contact created",
		Trigger: &models.Trigger{Kind: models.TriggerKindRecordCreated, EntityLogicalName: "contact"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TriggerKindRecordCreated, workflow.Definition.Trigger.Kind)
}

func TestWorkflowService_Get_NotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowService_Update(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	name := "Renamed"
	updated, err := svc.Update(ctx, created.ID, UpdateWorkflowRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
}

func TestWorkflowService_Update_TriggerAndDefinitionTogether(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	replacement := &models.Definition{
		Trigger: models.Trigger{Kind: models.TriggerKindManual},
		Steps:   models.Steps{&models.LogStep{ID: "log-1", Message: "hello"}},
	}
	trigger := &models.Trigger{Kind: models.TriggerKindRecordCreated, EntityLogicalName: "contact"}

	updated, err := svc.Update(ctx, created.ID, UpdateWorkflowRequest{
		Trigger:    trigger,
		Definition: replacement,
	})
	require.NoError(t, err)

	// Both halves of the partial update land: the replacement tree and the
	// trigger override on top of it.
	require.Len(t, updated.Definition.Steps, 1)
	assert.Equal(t, "log-1", updated.Definition.Steps[0].StepID())
	assert.Equal(t, models.TriggerKindRecordCreated, updated.Definition.Trigger.Kind)
	assert.Equal(t, "contact", updated.Definition.Trigger.EntityLogicalName)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerKindRecordCreated, loaded.Definition.Trigger.Kind)
}

func TestWorkflowService_Delete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err := svc.Get(ctx, created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowService_InsertStep_AppendsWhenNoTarget(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	updated, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)
	require.Len(t, updated.Definition.Steps, 1)
	assert.Equal(t, stepID, updated.Definition.Steps[0].StepID())
}

func TestWorkflowService_InsertStep_IntoConditionBranch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, condID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "condition"})
	require.NoError(t, err)

	updated, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{
		Template: "log",
		TargetID: condID,
		Mode:     tree.InsertThen,
	})
	require.NoError(t, err)

	cond, found := tree.FindStepByID(updated.Definition.Steps, condID)
	require.True(t, found)
	require.Len(t, cond.(*models.ConditionStep).Then, 1)
	assert.Equal(t, stepID, cond.(*models.ConditionStep).Then[0].StepID())
}

func TestWorkflowService_InsertStep_UnknownTemplate(t *testing.T) {
	svc := newService(t)
	created := createDraft(t, svc)

	_, _, err := svc.InsertStep(context.Background(), created.ID, InsertStepRequest{Template: "teleport"})
	assert.True(t, IsTemplateNotFound(err))
}

func TestWorkflowService_InsertStep_TriggerTemplateRefused(t *testing.T) {
	svc := newService(t)
	created := createDraft(t, svc)

	_, _, err := svc.InsertStep(context.Background(), created.ID, InsertStepRequest{Template: "manual-trigger"})
	assert.True(t, IsTemplateNotFound(err))
}

func TestWorkflowService_InsertStep_MissingTarget(t *testing.T) {
	svc := newService(t)
	created := createDraft(t, svc)

	_, _, err := svc.InsertStep(context.Background(), created.ID, InsertStepRequest{
		Template: "log",
		TargetID: "missing",
		Mode:     tree.InsertAfter,
	})
	assert.True(t, IsStepNotFound(err))
}

func TestWorkflowService_UpdateStep_KeepsPathID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	// The payload carries a different id; the path id wins.
	raw := json.RawMessage(`{"type":"log","id":"spoofed","message":"hello"}`)
	updated, err := svc.UpdateStep(ctx, created.ID, stepID, raw)
	require.NoError(t, err)

	step, found := tree.FindStepByID(updated.Definition.Steps, stepID)
	require.True(t, found)
	assert.Equal(t, "hello", step.(*models.LogStep).Message)

	_, found = tree.FindStepByID(updated.Definition.Steps, "spoofed")
	assert.False(t, found)
}

func TestWorkflowService_UpdateStep_BadPayload(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	_, err = svc.UpdateStep(ctx, created.ID, stepID, json.RawMessage(`{"id":"x"}`))
	assert.ErrorIs(t, err, models.ErrMissingStepType)
}

func TestWorkflowService_RemoveStep(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	updated, err := svc.RemoveStep(ctx, created.ID, stepID)
	require.NoError(t, err)
	assert.Empty(t, updated.Definition.Steps)

	_, err = svc.RemoveStep(ctx, created.ID, stepID)
	assert.True(t, IsStepNotFound(err))
}

func TestWorkflowService_DuplicateStep(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	updated, cloneID, err := svc.DuplicateStep(ctx, created.ID, stepID)
	require.NoError(t, err)
	require.Len(t, updated.Definition.Steps, 2)
	assert.NotEqual(t, stepID, cloneID)
	assert.Equal(t, cloneID, updated.Definition.Steps[1].StepID())
	assert.Empty(t, tree.DuplicateIDs(updated.Definition.Steps))
}

func TestWorkflowService_MoveStep(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, first, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)
	_, second, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	updated, err := svc.MoveStep(ctx, created.ID, second, first, tree.InsertBefore)
	require.NoError(t, err)
	require.Len(t, updated.Definition.Steps, 2)
	assert.Equal(t, second, updated.Definition.Steps[0].StepID())
	assert.Equal(t, first, updated.Definition.Steps[1].StepID())
}

func TestWorkflowService_MoveStep_IntoOwnBranchRefused(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, condID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "condition"})
	require.NoError(t, err)
	_, innerID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{
		Template: "log",
		TargetID: condID,
		Mode:     tree.InsertThen,
	})
	require.NoError(t, err)

	_, err = svc.MoveStep(ctx, created.ID, condID, innerID, tree.InsertBefore)
	assert.True(t, IsInvalidMove(err))
}

func TestWorkflowService_Publish(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	raw := json.RawMessage(`{"type":"log","id":"` + stepID + `","message":"hello"}`)
	_, err = svc.UpdateStep(ctx, created.ID, stepID, raw)
	require.NoError(t, err)

	published, diagnostics, err := svc.Publish(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, models.WorkflowStatusPublished, published.Status)
	assert.NotEqual(t, created.ID, published.ID)
	require.NotNil(t, published.PublishedAt)

	draft, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDraft, draft.Status)
	assert.Equal(t, published.ID, draft.PublishedID)

	// The snapshot is a separate persisted workflow.
	snapshot, err := svc.Get(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusPublished, snapshot.Status)
}

func TestWorkflowService_Publish_LintGate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	// An empty workflow lints with an error, so the publish is refused and
	// the diagnostics come back with the refusal.
	_, diagnostics, err := svc.Publish(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsWorkflowInvalid(err))
	require.NotEmpty(t, diagnostics)
	assert.True(t, lint.HasErrors(diagnostics))
}

func TestWorkflowService_Publish_OnlyDrafts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	raw := json.RawMessage(`{"type":"log","id":"` + stepID + `","message":"hello"}`)
	_, err = svc.UpdateStep(ctx, created.ID, stepID, raw)
	require.NoError(t, err)

	published, _, err := svc.Publish(ctx, created.ID)
	require.NoError(t, err)

	_, _, err = svc.Publish(ctx, published.ID)
	assert.True(t, IsNotDraft(err))
}

func TestWorkflowService_ReadModels(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := createDraft(t, svc)

	_, stepID, err := svc.InsertStep(ctx, created.ID, InsertStepRequest{Template: "log"})
	require.NoError(t, err)

	diagnostics, err := svc.Diagnostics(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, lint.HasErrors(diagnostics)) // empty log message

	positions, err := svc.Layout(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, positions, layout.TriggerNodeID)
	assert.Contains(t, positions, stepID)

	paths, err := svc.Paths(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{stepID: "0"}, paths)

	available, err := svc.Tokens(ctx, created.ID, stepID, []string{"email"})
	require.NoError(t, err)
	assert.Contains(t, available, "{{run.id}}")
	assert.Contains(t, available, "{{trigger.payload.email}}")
}
