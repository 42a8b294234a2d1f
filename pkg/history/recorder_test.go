package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pipeboard/pipeboard/pkg/editor"
	"github.com/pipeboard/pipeboard/pkg/history"
	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordsCommittedEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Blocking publish until ack makes every Apply return only after the
	// recorder captured its snapshot.
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	ed := editor.New(testutil.CreateTestWorkflow(), editor.WithPublisher(pubsub))
	log := history.NewLog()
	recorder := history.NewRecorder(ed, log, pubsub, nil)

	done := make(chan error, 1)
	go func() {
		done <- recorder.Run(ctx)
	}()

	// Let the subscription register before publishing.
	time.Sleep(100 * time.Millisecond)

	_, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 1, Y: 1}))
	require.NoError(t, err)

	_, err = ed.Apply(ctx, editor.Select("job-build"))
	require.NoError(t, err)

	assert.Equal(t, 2, log.Len())

	current, ok := log.Current()
	require.True(t, ok)
	assert.Equal(t, "select", current.Description)
	assert.Equal(t, "job-build", current.State.Selection)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop on context cancel")
	}
}

func TestRecorder_StartSubscribesBeforeReturning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	ed := editor.New(testutil.CreateTestWorkflow(), editor.WithPublisher(pubsub))
	log := history.NewLog()
	recorder := history.NewRecorder(ed, log, pubsub, nil)

	// No settling sleep: the subscription exists once Start returns, so the
	// very first edit is captured.
	require.NoError(t, recorder.Start(ctx))

	_, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 4, Y: 4}))
	require.NoError(t, err)

	assert.Equal(t, 1, log.Len())
}

func TestRecorder_SkipsRestoreEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	ed := editor.New(testutil.CreateTestWorkflow(), editor.WithPublisher(pubsub))
	log := history.NewLog()
	recorder := history.NewRecorder(ed, log, pubsub, nil)

	go func() {
		_ = recorder.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	_, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 2, Y: 2}))
	require.NoError(t, err)

	snapshot, ok := log.Current()
	require.True(t, ok)

	ed.Restore(ctx, snapshot.State)

	// The restore committed an edit but recorded no snapshot.
	assert.Equal(t, int64(2), ed.Revision())
	assert.Equal(t, 1, log.Len())
}
