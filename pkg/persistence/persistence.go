// Package persistence provides the storage abstraction for workflow
// envelopes. The definition inside an envelope is carried verbatim; the core
// never depends on how it is stored.
package persistence

import (
	"context"

	"github.com/flowsmith/flowsmith/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
