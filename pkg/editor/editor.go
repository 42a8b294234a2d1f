package editor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pipeboard/pipeboard/pkg/canvas"
	"github.com/pipeboard/pipeboard/pkg/models"
)

// Editor owns the current (document, graph) pair and serializes edits: one
// command completes, including its resync and validation, before the next is
// accepted. All mapping runs synchronously; the mutex is the Go rendering of
// the single-threaded edit loop.
type Editor struct {
	mu        sync.Mutex
	state     State
	issues    []models.Issue
	revision  int64
	logger    *slog.Logger
	publisher message.Publisher
}

// Option configures an Editor.
type Option func(*Editor)

// WithPublisher attaches a watermill publisher; every committed command
// publishes an EditApplied event on EditTopic.
func WithPublisher(publisher message.Publisher) Option {
	return func(e *Editor) {
		e.publisher = publisher
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New creates an editor seeded from a document: the graph is derived by the
// forward mapper and laid out, and the document is validated.
func New(document *models.Workflow, opts ...Option) *Editor {
	editor := &Editor{
		logger: slog.With("module", "editor"),
	}

	for _, opt := range opts {
		opt(editor)
	}

	document = document.Clone()
	if document == nil {
		document = &models.Workflow{}
	}

	editor.state = State{
		Document: document,
		Graph:    canvas.Arrange(canvas.MapDocument(document)),
	}
	editor.issues = models.ValidateWorkflow(document)

	return editor
}

// Apply runs a command against the current state. On success the new state is
// committed, revalidated, and announced; on failure the prior state is left
// untouched.
func (e *Editor) Apply(ctx context.Context, cmd Command) (State, error) {
	e.mu.Lock()

	next, err := cmd.Apply(e.state)
	if err != nil {
		e.logger.DebugContext(ctx, "Command rejected", "command", cmd.Name(), "error", err)
		prior := e.state.Clone()
		e.mu.Unlock()

		return prior, err
	}

	e.state = next
	e.issues = models.ValidateWorkflow(next.Document)
	e.revision++

	committed := e.state.Clone()
	event := e.editEvent(cmd.Name())
	e.mu.Unlock()

	// Published outside the lock: a subscriber may call State() before
	// acking, and a blocking bus waits for that ack.
	e.publish(ctx, event)

	return committed, nil
}

// State returns a copy of the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.Clone()
}

// Issues returns the structural validation issues of the current document.
func (e *Editor) Issues() []models.Issue {
	e.mu.Lock()
	defer e.mu.Unlock()

	issues := make([]models.Issue, len(e.issues))
	copy(issues, e.issues)

	return issues
}

// Revision returns the number of committed edits.
func (e *Editor) Revision() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.revision
}

// Restore replaces the current state wholesale, bypassing both mappers. This
// is the history log's entry point: a snapshot is reinstated verbatim, not
// resynced.
func (e *Editor) Restore(ctx context.Context, state State) {
	e.mu.Lock()

	e.state = state.Clone()
	e.issues = models.ValidateWorkflow(e.state.Document)
	e.revision++

	event := e.editEvent("restore")
	e.mu.Unlock()

	e.publish(ctx, event)
}

// editEvent builds the announcement for the just-committed edit. Callers must
// hold the mutex.
func (e *Editor) editEvent(commandName string) EditApplied {
	workflowName := ""
	if e.state.Document != nil {
		workflowName = e.state.Document.Name
	}

	return EditApplied{
		Command:    commandName,
		Revision:   e.revision,
		Workflow:   workflowName,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *Editor) publish(ctx context.Context, event EditApplied) {
	if e.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to marshal edit event", "error", err)

		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := e.publisher.Publish(EditTopic, msg); err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish edit event", "error", err)
	}
}
