// Package persistence provides the storage abstraction for workflow
// documents. Documents are stored in their canonical YAML form; the graph is
// never persisted, it is always re-derived on load.
package persistence

import (
	"context"

	"github.com/pipeboard/pipeboard/pkg/models"
)

type Persistence interface {
	Documents(ctx context.Context) ([]*models.Workflow, error)
	DocumentByName(ctx context.Context, name string) (*models.Workflow, error)
	SaveDocument(ctx context.Context, document *models.Workflow) error
	DeleteDocument(ctx context.Context, name string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
