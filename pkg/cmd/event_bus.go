package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewEditBus creates the in-process pub/sub channel edits are announced on.
// The editor publishes, the history recorder (and any autosave hook)
// subscribes. Publishes block until the subscriber acked, so a command's
// history snapshot is recorded before the edit returns.
func NewEditBus(_ *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})
}
