// Package cmd holds shared wiring for the command-line entry points.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/persistence"
	"github.com/flowsmith/flowsmith/pkg/persistence/file"
	"github.com/flowsmith/flowsmith/pkg/persistence/postgresql"
	"github.com/flowsmith/flowsmith/pkg/persistence/redisstore"
)

// NewPersistence picks a store by the URL scheme: postgres://, redis://, or a
// plain filesystem path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		return redisstore.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL, logger)
	}
}
