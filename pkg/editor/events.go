package editor

import "time"

// EditTopic is the watermill topic every committed edit is published on.
const EditTopic = "pipeboard.edits"

// EditApplied is the event published after a command commits. It carries
// enough to describe the edit, not the state itself; interested subscribers
// (the history recorder, autosave) read the state from the editor.
type EditApplied struct {
	Command    string    `json:"command"`
	Revision   int64     `json:"revision"`
	Workflow   string    `json:"workflow"`
	OccurredAt time.Time `json:"occurred_at"`
}
