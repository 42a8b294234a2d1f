// Package cmd provides shared construction helpers for the binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/persistence/file"
	"github.com/pipeboard/pipeboard/pkg/persistence/postgresql"
)

// NewPersistence selects a persistence backend from the database URL scheme:
// postgres:// connects to PostgreSQL, anything else is treated as a file
// root. Backend failures are fatal; a half-connected store is worse than none.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize PostgreSQL persistence", "error", err)
			panic(err)
		}

		return store
	}

	return file.NewPersistence(databaseURL)
}
