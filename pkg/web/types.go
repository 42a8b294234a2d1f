// Package web provides HTTP request and response types for the editor API.
package web

import (
	"time"

	"github.com/pipeboard/pipeboard/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a workflow
// from the starter template.
type CreateWorkflowRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// ConnectionRequest represents a proposed edge between two nodes.
type ConnectionRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// UpdateNodeRequest represents a partial node update: a new position, a new
// payload, or both. The payload's concrete type follows the node kind.
type UpdateNodeRequest struct {
	Position *models.Position `json:"position,omitempty"`
	Node     *models.Node     `json:"node,omitempty"`
}

// StateResponse carries one consistent document/graph pair plus the
// document's current validation issues.
type StateResponse struct {
	Workflow *models.Workflow `json:"workflow"`
	Graph    *models.Graph    `json:"graph"`
	Issues   []models.Issue   `json:"issues"`
}

// HistoryEntry describes one recorded snapshot without its state payload.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	TakenAt     time.Time `json:"taken_at"`
}

// HistoryResponse lists a session's snapshots; Cursor points at the entry
// currently reinstated.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Cursor  int            `json:"cursor"`
}

// ValidationResponse lists a document's structural and trigger issues.
type ValidationResponse struct {
	Valid  bool           `json:"valid"`
	Issues []models.Issue `json:"issues"`
}
