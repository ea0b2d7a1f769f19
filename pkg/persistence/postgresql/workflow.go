package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , name
  , description
  , status
  , owner
  , published_id
  , definition
  , created_at
  , updated_at
  , published_at
  , deleted_at
`

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := "SELECT " + workflowColumns + `
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + `
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	definition, err := json.Marshal(workflow.Definition)
	if err != nil {
		return fmt.Errorf("failed to encode definition for workflow %s: %w", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, description, status, owner, published_id, definition, created_at, updated_at, published_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , status = EXCLUDED.status
		  , owner = EXCLUDED.owner
		  , published_id = EXCLUDED.published_id
		  , definition = EXCLUDED.definition
		  , updated_at = EXCLUDED.updated_at
		  , published_at = EXCLUDED.published_at
		  , deleted_at = EXCLUDED.deleted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Status),
		workflow.Owner,
		workflow.PublishedID,
		definition,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.PublishedAt,
		workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	r.logger.DebugContext(ctx, "Saved workflow", "workflow_id", workflow.ID)

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE workflows SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow   models.Workflow
		status     string
		definition []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&status,
		&workflow.Owner,
		&workflow.PublishedID,
		&definition,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&workflow.PublishedAt,
		&workflow.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	workflow.Status = models.WorkflowStatus(status)

	def, err := models.UnmarshalDefinition(definition)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition for workflow %s: %w", workflow.ID, err)
	}

	workflow.Definition = def

	return &workflow, nil
}
