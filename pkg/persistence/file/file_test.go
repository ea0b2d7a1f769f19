package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
)

func newStore(t *testing.T) *Persistence {
	t.Helper()

	store, err := NewPersistence(t.TempDir(), slog.Default())
	require.NoError(t, err)

	return store
}

func sampleWorkflow(id string) *models.Workflow {
	gen := models.NewSequentialIDGenerator(id)
	def := models.NewDefinition()
	def.Steps = models.Steps{models.NewLogStep(gen, "hello")}

	return &models.Workflow{
		ID:         id,
		Name:       "Sample workflow",
		Status:     models.WorkflowStatusDraft,
		Definition: def,
	}
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	workflow := sampleWorkflow("wf-1")
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	loaded, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, workflow, loaded)
}

func TestFilePersistence_WorkflowByID_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.WorkflowByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestFilePersistence_Workflows_ListsAll(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorkflow(ctx, sampleWorkflow("wf-1")))
	require.NoError(t, store.SaveWorkflow(ctx, sampleWorkflow("wf-2")))

	workflows, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, workflows, 2)
}

func TestFilePersistence_Workflows_EmptyRoot(t *testing.T) {
	store := newStore(t)

	workflows, err := store.Workflows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestFilePersistence_SaveOverwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	workflow := sampleWorkflow("wf-1")
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	workflow.Name = "Renamed workflow"
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	loaded, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed workflow", loaded.Name)

	workflows, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestFilePersistence_Delete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorkflow(ctx, sampleWorkflow("wf-1")))
	require.NoError(t, store.DeleteWorkflow(ctx, "wf-1"))

	_, err := store.WorkflowByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = store.DeleteWorkflow(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestFilePersistence_NoTempFilesLeftBehind(t *testing.T) {
	root := t.TempDir()
	store, err := NewPersistence(root, slog.Default())
	require.NoError(t, err)

	require.NoError(t, store.SaveWorkflow(context.Background(), sampleWorkflow("wf-1")))

	entries, err := os.ReadDir(filepath.Join(root, "workflows"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wf-1.json", entries[0].Name())
}

func TestFilePersistence_HealthCheck(t *testing.T) {
	store := newStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
	assert.NoError(t, store.Close(context.Background()))
}
