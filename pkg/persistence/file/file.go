// Package file stores workflows as one JSON document per workflow under a
// root directory. It is the default store for local editing sessions.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
)

type Persistence struct {
	root   string
	logger *slog.Logger
}

// NewPersistence creates the workflows directory under root if needed.
func NewPersistence(root string, logger *slog.Logger) (*Persistence, error) {
	dir := filepath.Join(root, "workflows")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workflows directory: %w", err)
	}

	return &Persistence{root: root, logger: logger.With("module", "persistence.file")}, nil
}

func (p *Persistence) workflowPath(id string) string {
	return filepath.Join(p.root, "workflows", id+".json")
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	dir := os.DirFS(filepath.Join(p.root, "workflows"))

	files, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(files))

	for _, file := range files {
		id := file[:len(file)-len(".json")]

		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(p.workflowPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	// Write-then-rename so a crash never leaves a half-written definition.
	path := p.workflowPath(workflow.ID)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workflow file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace workflow file: %w", err)
	}

	p.logger.DebugContext(ctx, "Saved workflow", "workflow_id", workflow.ID)

	return nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	err := os.Remove(p.workflowPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
		}

		return fmt.Errorf("failed to delete workflow file: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(filepath.Join(p.root, "workflows"))
	if err != nil {
		return fmt.Errorf("workflows directory is not accessible: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("workflows path is not a directory")
	}

	return nil
}

func (p *Persistence) Close(ctx context.Context) error {
	return nil
}
