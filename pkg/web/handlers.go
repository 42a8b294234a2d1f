// Package web provides the REST handlers for the workflow editor API.
package web

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pipeboard/pipeboard/pkg/canvas"
	"github.com/pipeboard/pipeboard/pkg/editor"
	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/otelhelper"
	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/registry"
	"github.com/pipeboard/pipeboard/pkg/yamlcodec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type APIHandlers struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validator   *validator.Validate
	sessions    *Sessions
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewAPIHandlers(
	store persistence.Persistence,
	reg *registry.Registry,
	validate *validator.Validate,
	sessions *Sessions,
	logger *slog.Logger,
) *APIHandlers {
	if logger == nil {
		logger = slog.With("module", "api")
	}

	return &APIHandlers{
		persistence: store,
		registry:    reg,
		validator:   validate,
		sessions:    sessions,
		// The global tracer is a noop until tracing is enabled.
		tracer: otel.Tracer("pipeboard-api"),
		logger: logger,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	documents, err := h.persistence.Documents(c.Context())
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": documents, "total_count": len(documents)})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	document, err := h.persistence.DocumentByName(c.Context(), c.Params("name"))
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(document)
}

// CreateWorkflow seeds a new document from the starter template: one push
// trigger, one build job.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	document := &models.Workflow{
		Name:     req.Name,
		Triggers: []models.Trigger{{Kind: "push"}},
		Jobs: []*models.Job{
			{
				ID:     "build",
				RunsOn: []string{"ubuntu-latest"},
				Steps: []models.Step{
					{Uses: "actions/checkout@v4"},
					{Run: "make build"},
				},
			},
		},
	}

	if err := h.persistence.SaveDocument(c.Context(), document); err != nil {
		return handleStorageError(c, err)
	}

	h.sessions.Drop(document.Name)

	return c.Status(fiber.StatusCreated).JSON(h.stateResponse(document))
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.persistence.DeleteDocument(c.Context(), c.Params("name")); err != nil {
		return handleStorageError(c, err)
	}

	h.sessions.Drop(c.Params("name"))

	return c.SendStatus(fiber.StatusNoContent)
}

// ImportWorkflow accepts raw workflow YAML. A parse failure leaves stored
// state untouched and reports a single fatal message.
func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	document, err := yamlcodec.Unmarshal(c.Body())
	if err != nil {
		return handleParseError(c, err)
	}

	if document.Name == "" {
		return badRequest(c, "imported workflow must have a name")
	}

	if err := h.persistence.SaveDocument(c.Context(), document); err != nil {
		return handleStorageError(c, err)
	}

	h.sessions.Drop(document.Name)

	return c.Status(fiber.StatusCreated).JSON(h.stateResponse(document))
}

// ExportWorkflow renders the canonical YAML form.
func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	document, err := h.persistence.DocumentByName(c.Context(), c.Params("name"))
	if err != nil {
		return handleStorageError(c, err)
	}

	data, err := yamlcodec.Marshal(document)
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/yaml")

	return c.Send(data)
}

// GetGraph returns the laid-out visual graph derived from the document.
func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	document, err := h.persistence.DocumentByName(c.Context(), c.Params("name"))
	if err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(canvas.Arrange(canvas.MapDocument(document)))
}

// ValidateWorkflow reports structural and trigger-configuration issues.
func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	document, err := h.persistence.DocumentByName(c.Context(), c.Params("name"))
	if err != nil {
		return handleStorageError(c, err)
	}

	issues := models.ValidateWorkflow(document)
	issues = append(issues, h.registry.ValidateTriggers(document.Triggers)...)

	return c.JSON(ValidationResponse{Valid: len(issues) == 0, Issues: issues})
}

// CheckConnection returns the validator's verdict on a proposed edge without
// applying anything.
func (h *APIHandlers) CheckConnection(c fiber.Ctx) error {
	var req ConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	document, err := h.persistence.DocumentByName(c.Context(), c.Params("name"))
	if err != nil {
		return handleStorageError(c, err)
	}

	graph := canvas.Arrange(canvas.MapDocument(document))

	return c.JSON(canvas.CheckConnection(graph, req.Source, req.Target))
}

// AddNode applies an add-node edit and persists the resynced document.
func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var node models.Node
	if err := c.Bind().JSON(&node); err != nil {
		return badRequest(c, "Invalid node body: "+err.Error())
	}

	if err := h.validator.Struct(&node); err != nil {
		return badRequest(c, err.Error())
	}

	return h.applyEdit(c, editor.AddNode(&node))
}

// UpdateNode moves a node, replaces its payload, or both.
func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	nodeID := c.Params("nodeId")
	commands := make([]editor.Command, 0, 2)

	if req.Position != nil {
		commands = append(commands, editor.MoveNode(nodeID, *req.Position))
	}

	if req.Node != nil && req.Node.Data != nil {
		commands = append(commands, editor.UpdateNodeData(nodeID, req.Node.Data))
	}

	if len(commands) == 0 {
		return badRequest(c, "nothing to update")
	}

	return h.applyEdit(c, commands...)
}

// DeleteNode removes a node and everything hanging off it.
func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	return h.applyEdit(c, editor.RemoveNode(c.Params("nodeId")))
}

// AddEdge proposes a connection; the validator decides.
func (h *APIHandlers) AddEdge(c fiber.Ctx) error {
	var req ConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.applyEdit(c, editor.AddEdge(req.Source, req.Target))
}

// DeleteEdge removes an edge by id.
func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	return h.applyEdit(c, editor.RemoveEdge(c.Params("edgeId")))
}

// ArrangeGraph re-runs the layout pass.
func (h *APIHandlers) ArrangeGraph(c fiber.Ctx) error {
	return h.applyEdit(c, editor.AutoArrange())
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		h.logger.ErrorContext(c.Context(), "Persistence health check failed", "error", err)

		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

// GetHistory lists the named workflow's recorded snapshots.
func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleStorageError(c, err)
	}

	snapshots, cursor := session.History()

	entries := make([]HistoryEntry, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entries = append(entries, HistoryEntry{
			ID:          snapshot.ID,
			Description: snapshot.Description,
			TakenAt:     snapshot.TakenAt,
		})
	}

	return c.JSON(HistoryResponse{Entries: entries, Cursor: cursor})
}

// UndoEdit reinstates the previous snapshot and persists it.
func (h *APIHandlers) UndoEdit(c fiber.Ctx) error {
	return h.restoreStep(c, (*Session).Undo, "nothing to undo")
}

// RedoEdit reinstates the next snapshot and persists it.
func (h *APIHandlers) RedoEdit(c fiber.Ctx) error {
	return h.restoreStep(c, (*Session).Redo, "nothing to redo")
}

func (h *APIHandlers) restoreStep(c fiber.Ctx, step func(*Session, context.Context) (editor.State, bool), exhausted string) error {
	session, err := h.session(c)
	if err != nil {
		return handleStorageError(c, err)
	}

	state, ok := step(session, c.Context())
	if !ok {
		return conflict(c, exhausted)
	}

	if err := h.persistence.SaveDocument(c.Context(), state.Document); err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(StateResponse{
		Workflow: state.Document,
		Graph:    state.Graph,
		Issues:   session.Issues(),
	})
}

// applyEdit runs the commands through the workflow's session editor and
// persists the resynced document. A failed command leaves the stored
// document as it was.
func (h *APIHandlers) applyEdit(c fiber.Ctx, commands ...editor.Command) error {
	name := c.Params("name")

	session, err := h.session(c)
	if err != nil {
		return handleStorageError(c, err)
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "workflow.edit",
		attribute.String(otelhelper.WorkflowNameKey, name),
		attribute.String(otelhelper.CommandKey, commands[0].Name()),
	)
	defer span.End()

	state, err := session.Apply(ctx, commands...)
	if err != nil {
		span.RecordError(err)

		return handleEditorError(c, err)
	}

	span.SetAttributes(attribute.Int64(otelhelper.RevisionKey, session.Revision()))

	if err := h.persistence.SaveDocument(ctx, state.Document); err != nil {
		return handleStorageError(c, err)
	}

	return c.JSON(StateResponse{
		Workflow: state.Document,
		Graph:    state.Graph,
		Issues:   session.Issues(),
	})
}

// session returns the workflow's open session, loading the stored document
// on first use.
func (h *APIHandlers) session(c fiber.Ctx) (*Session, error) {
	name := c.Params("name")

	return h.sessions.Acquire(name, func() (*models.Workflow, error) {
		return h.persistence.DocumentByName(c.Context(), name)
	})
}

func (h *APIHandlers) stateResponse(document *models.Workflow) StateResponse {
	return StateResponse{
		Workflow: document,
		Graph:    canvas.Arrange(canvas.MapDocument(document)),
		Issues:   models.ValidateWorkflow(document),
	}
}
