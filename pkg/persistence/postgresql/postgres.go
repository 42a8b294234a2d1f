// Package postgresql provides PostgreSQL persistence for workflow documents.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	// PostgreSQL driver registration.
	_ "github.com/lib/pq"

	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/persistence/sqlbase"
	"github.com/pipeboard/pipeboard/pkg/yamlcodec"
)

// Persistence implements the persistence layer for PostgreSQL. Documents are
// stored as canonical YAML bodies keyed by workflow name.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, migrates, and returns a PostgreSQL persistence.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Documents returns every stored document.
func (p *Persistence) Documents(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT body FROM documents ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	documents := make([]*models.Workflow, 0)

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}

		document, err := yamlcodec.Unmarshal([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored document: %w", err)
		}

		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// DocumentByName returns one document by workflow name.
func (p *Persistence) DocumentByName(ctx context.Context, name string) (*models.Workflow, error) {
	var body string

	err := p.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = $1", name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrDocumentNotFound, name)
		}

		return nil, persistence.NewDocumentError("Load", name, err)
	}

	document, err := yamlcodec.Unmarshal([]byte(body))
	if err != nil {
		return nil, persistence.NewDocumentError("Load", name, err)
	}

	return document, nil
}

// SaveDocument upserts the document's canonical YAML body.
func (p *Persistence) SaveDocument(ctx context.Context, document *models.Workflow) error {
	body, err := yamlcodec.Marshal(document)
	if err != nil {
		return persistence.NewDocumentError("Save", document.Name, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (name)
		DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, document.Name, string(body))
	if err != nil {
		return persistence.NewDocumentError("Save", document.Name, err)
	}

	return nil
}

// DeleteDocument removes a stored document.
func (p *Persistence) DeleteDocument(ctx context.Context, name string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM documents WHERE name = $1", name)
	if err != nil {
		return persistence.NewDocumentError("Delete", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewDocumentError("Delete", name, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", persistence.ErrDocumentNotFound, name)
	}

	return nil
}
