// Package history keeps an append-only log of editor state snapshots with a
// cursor. Undo, redo and jump are pure cursor moves; reinstating a snapshot
// is the editor's Restore, which bypasses both mappers.
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/pipeboard/pipeboard/pkg/editor"
)

// Snapshot is one recorded (document, graph, selection) tuple.
type Snapshot struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	State       editor.State `json:"-"`
	TakenAt     time.Time    `json:"taken_at"`
}

// Log is the snapshot history. It is not safe for concurrent use; edits are
// already serialized by the editor, and the log rides on the same loop.
type Log struct {
	entries []Snapshot
	cursor  int
}

// NewLog creates an empty history log.
func NewLog() *Log {
	return &Log{cursor: -1}
}

// Record appends a snapshot after the cursor, discarding any redo tail, and
// moves the cursor onto it.
func (l *Log) Record(state editor.State, description string) Snapshot {
	snapshot := Snapshot{
		ID:          uuid.New().String(),
		Description: description,
		State:       state.Clone(),
		TakenAt:     time.Now().UTC(),
	}

	l.entries = append(l.entries[:l.cursor+1], snapshot)
	l.cursor = len(l.entries) - 1

	return snapshot
}

// Undo moves the cursor one entry back and returns that snapshot.
func (l *Log) Undo() (Snapshot, bool) {
	if l.cursor <= 0 {
		return Snapshot{}, false
	}

	l.cursor--

	return l.entries[l.cursor], true
}

// Redo moves the cursor one entry forward and returns that snapshot.
func (l *Log) Redo() (Snapshot, bool) {
	if l.cursor+1 >= len(l.entries) {
		return Snapshot{}, false
	}

	l.cursor++

	return l.entries[l.cursor], true
}

// JumpTo moves the cursor to an absolute index.
func (l *Log) JumpTo(index int) (Snapshot, bool) {
	if index < 0 || index >= len(l.entries) {
		return Snapshot{}, false
	}

	l.cursor = index

	return l.entries[l.cursor], true
}

// Current returns the snapshot under the cursor.
func (l *Log) Current() (Snapshot, bool) {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return Snapshot{}, false
	}

	return l.entries[l.cursor], true
}

// Snapshots returns a copy of the recorded snapshots in order.
func (l *Log) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, len(l.entries))
	copy(snapshots, l.entries)

	return snapshots
}

// Len returns the number of recorded snapshots.
func (l *Log) Len() int {
	return len(l.entries)
}

// Cursor returns the current cursor index, -1 when empty.
func (l *Log) Cursor() int {
	return l.cursor
}
