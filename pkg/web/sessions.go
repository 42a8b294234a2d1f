package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pipeboard/pipeboard/pkg/editor"
	"github.com/pipeboard/pipeboard/pkg/history"
	"github.com/pipeboard/pipeboard/pkg/log"
	"github.com/pipeboard/pipeboard/pkg/models"
)

// EditBus is the publisher/subscriber pair one session's editor and history
// recorder share. Publishes must block until the subscriber acked, so a
// command's snapshot is recorded before the edit returns.
type EditBus interface {
	message.Publisher
	message.Subscriber
}

// Session is the live editor plus history log for one open workflow. Its
// mutex serializes edits, undo/redo, and history reads; the blocking-ack bus
// makes the recorder finish inside Apply, so the log never sees concurrent
// writers.
type Session struct {
	mu      sync.Mutex
	editor  *editor.Editor
	history *history.Log
	bus     EditBus
	cancel  context.CancelFunc
}

// Apply runs the commands in order against the session's editor. Each
// committed command is announced on the bus and snapshotted before the next
// one runs.
func (s *Session) Apply(ctx context.Context, commands ...editor.Command) (editor.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state editor.State

	var err error

	for _, command := range commands {
		state, err = s.editor.Apply(ctx, command)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// Undo steps the history cursor back and reinstates that snapshot. The
// restore bypasses both mappers and is not recorded again.
func (s *Session) Undo(ctx context.Context) (editor.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.history.Undo()
	if !ok {
		return editor.State{}, false
	}

	s.editor.Restore(ctx, snapshot.State)

	return s.editor.State(), true
}

// Redo steps the history cursor forward and reinstates that snapshot.
func (s *Session) Redo(ctx context.Context) (editor.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.history.Redo()
	if !ok {
		return editor.State{}, false
	}

	s.editor.Restore(ctx, snapshot.State)

	return s.editor.State(), true
}

// History returns the recorded snapshots and the cursor index.
func (s *Session) History() ([]history.Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.Snapshots(), s.history.Cursor()
}

// Issues returns the current document's validation issues.
func (s *Session) Issues() []models.Issue {
	return s.editor.Issues()
}

// Revision returns the session editor's committed edit count.
func (s *Session) Revision() int64 {
	return s.editor.Revision()
}

// Sessions hands out one Session per workflow name, creating it lazily from
// the stored document. Dropping a session closes its bus and stops its
// recorder; the next acquire starts fresh from storage.
type Sessions struct {
	mu     sync.Mutex
	open   map[string]*Session
	newBus func() EditBus
	logger *slog.Logger
}

// NewSessions creates a session registry backed by the given bus factory.
func NewSessions(newBus func() EditBus, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.With("module", "session")
	}

	return &Sessions{
		open:   make(map[string]*Session),
		newBus: newBus,
		logger: logger,
	}
}

// Acquire returns the open session for a workflow, loading the document and
// wiring editor, bus, and history recorder when none exists yet. The opening
// state is recorded as the history baseline, so the first undo lands there.
func (s *Sessions) Acquire(name string, load func() (*models.Workflow, error)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.open[name]; ok {
		return session, nil
	}

	document, err := load()
	if err != nil {
		return nil, err
	}

	bus := s.newBus()
	ctx, cancel := context.WithCancel(context.Background())

	ed := editor.New(document,
		editor.WithPublisher(bus),
		editor.WithLogger(log.WithWorkflow("session", name)),
	)

	historyLog := history.NewLog()
	recorder := history.NewRecorder(ed, historyLog, bus, log.WithWorkflow("history", name))

	if err := recorder.Start(ctx); err != nil {
		cancel()

		if closeErr := bus.Close(); closeErr != nil {
			s.logger.Error("Failed to close edit bus", "workflow", name, "error", closeErr)
		}

		return nil, err
	}

	historyLog.Record(ed.State(), "open")

	session := &Session{
		editor:  ed,
		history: historyLog,
		bus:     bus,
		cancel:  cancel,
	}
	s.open[name] = session

	return session, nil
}

// Drop closes a workflow's session if one is open. Callers drop on create,
// import, and delete so the next edit starts from the stored document.
func (s *Sessions) Drop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.open[name]
	if !ok {
		return
	}

	session.cancel()

	if err := session.bus.Close(); err != nil {
		s.logger.Error("Failed to close edit bus", "workflow", name, "error", err)
	}

	delete(s.open, name)
}
