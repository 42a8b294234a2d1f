// Package file provides file-based persistence: one canonical YAML file per
// workflow document under a root directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/yamlcodec"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string
}

var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]*$`)

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

// Close performs any necessary cleanup; nothing to do for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Documents loads every stored document.
func (p *Persistence) Documents(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Workflow{}, nil
		}

		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	documents := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		document, err := p.DocumentByName(ctx, strings.TrimSuffix(entry.Name(), ".yaml"))
		if err != nil {
			return nil, err
		}

		documents = append(documents, document)
	}

	return documents, nil
}

// DocumentByName loads one document by its workflow name.
func (p *Persistence) DocumentByName(_ context.Context, name string) (*models.Workflow, error) {
	path, err := p.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrDocumentNotFound, name)
		}

		return nil, persistence.NewDocumentError("Load", name, err)
	}

	document, err := yamlcodec.Unmarshal(data)
	if err != nil {
		return nil, persistence.NewDocumentError("Load", name, err)
	}

	return document, nil
}

// SaveDocument writes the document's canonical YAML, creating the root
// directory on first use.
func (p *Persistence) SaveDocument(_ context.Context, document *models.Workflow) error {
	path, err := p.path(document.Name)
	if err != nil {
		return err
	}

	data, err := yamlcodec.Marshal(document)
	if err != nil {
		return persistence.NewDocumentError("Save", document.Name, err)
	}

	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return persistence.NewDocumentError("Save", document.Name, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewDocumentError("Save", document.Name, err)
	}

	return nil
}

// DeleteDocument removes a stored document.
func (p *Persistence) DeleteDocument(_ context.Context, name string) error {
	path, err := p.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", persistence.ErrDocumentNotFound, name)
		}

		return persistence.NewDocumentError("Delete", name, err)
	}

	return nil
}

func (p *Persistence) path(name string) (string, error) {
	if !safeName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", persistence.ErrDocumentInvalidName, name)
	}

	return filepath.Join(p.root, name+".yaml"), nil
}
