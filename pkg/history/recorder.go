package history

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pipeboard/pipeboard/pkg/editor"
)

// Recorder subscribes to the editor's edit events and records a snapshot per
// committed command. It decouples history capture from the edit path the same
// way autosave would be.
type Recorder struct {
	editor     *editor.Editor
	log        *Log
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewRecorder wires a recorder to an editor and a history log.
func NewRecorder(ed *editor.Editor, log *Log, subscriber message.Subscriber, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.With("module", "history")
	}

	return &Recorder{
		editor:     ed,
		log:        log,
		subscriber: subscriber,
		logger:     logger,
	}
}

// Run consumes edit events until the context is cancelled or the subscription
// channel closes. Restore events are skipped: reinstating a snapshot must not
// record a new one.
func (r *Recorder) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, editor.EditTopic)
	if err != nil {
		return err
	}

	r.consume(ctx, messages)

	return nil
}

// Start subscribes before returning and consumes in the background. Once Start
// returns, no committed edit can slip past the recorder.
func (r *Recorder) Start(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, editor.EditTopic)
	if err != nil {
		return err
	}

	go r.consume(ctx, messages)

	return nil
}

func (r *Recorder) consume(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		var event editor.EditApplied
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			r.logger.ErrorContext(ctx, "Failed to decode edit event", "error", err)
			msg.Ack()

			continue
		}

		if event.Command != "restore" {
			r.log.Record(r.editor.State(), event.Command)
		}

		msg.Ack()
	}
}
