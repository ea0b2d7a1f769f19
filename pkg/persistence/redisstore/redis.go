// Package redisstore keeps workflows as JSON values under one key per
// workflow. It suits shared editing environments that already run Redis but
// not a SQL database.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/persistence"
)

const keyPrefix = "flowsmith:workflow:"

type Persistence struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPersistence parses a redis:// URL and verifies connectivity.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client, logger: logger.With("module", "persistence.redis")}, nil
}

// NewPersistenceWithClient wraps an existing client; tests use it with
// miniredis.
func NewPersistenceWithClient(client *redis.Client, logger *slog.Logger) *Persistence {
	return &Persistence{client: client, logger: logger.With("module", "persistence.redis")}
}

func workflowKey(id string) string {
	return keyPrefix + id
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	var (
		cursor    uint64
		workflows []*models.Workflow
	)

	for {
		keys, next, err := p.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow keys: %w", err)
		}

		for _, key := range keys {
			workflow, err := p.WorkflowByID(ctx, strings.TrimPrefix(key, keyPrefix))
			if err != nil {
				if persistence.IsWorkflowNotFound(err) {
					continue // expired between scan and get
				}

				return nil, err
			}

			workflows = append(workflows, workflow)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := p.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	if err := p.client.Set(ctx, workflowKey(workflow.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	p.logger.DebugContext(ctx, "Saved workflow", "workflow_id", workflow.ID)

	return nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	deleted, err := p.client.Del(ctx, workflowKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(ctx context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
