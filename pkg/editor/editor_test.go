package editor_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pipeboard/pipeboard/pkg/editor"
	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsGraphFromDocument(t *testing.T) {
	ed := editor.New(testutil.CreateTestWorkflow())

	state := ed.State()

	_, hasTrigger := state.Graph.NodeByID(models.TriggerNodeID)
	_, hasJob := state.Graph.NodeByID("job-build")
	_, hasStep := state.Graph.NodeByID("job-build-step-0")

	assert.True(t, hasTrigger)
	assert.True(t, hasJob)
	assert.True(t, hasStep)
	assert.Empty(t, ed.Issues())
	assert.Equal(t, int64(0), ed.Revision())
}

func TestEditor_Apply_IncrementsRevision(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	_, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 10, Y: 20}))
	require.NoError(t, err)

	assert.Equal(t, int64(1), ed.Revision())
}

func TestEditor_Apply_RejectedCommandLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	before := ed.State()

	_, err := ed.Apply(ctx, editor.AddEdge("job-build-step-0", "job-build"))
	require.Error(t, err)
	assert.True(t, editor.IsConnectionRejected(err))

	after := ed.State()
	assert.Equal(t, before.Document, after.Document)
	assert.Equal(t, before.Graph, after.Graph)
	assert.Equal(t, int64(0), ed.Revision())
}

func TestEditor_Apply_AddEdgeUpdatesNeeds(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("test"),
		testutil.CreateTestJob("build"),
	)))

	state, err := ed.Apply(ctx, editor.AddEdge("job-test", "job-build"))
	require.NoError(t, err)

	build, ok := state.Document.JobByID("build")
	require.True(t, ok)
	assert.Equal(t, []string{"test"}, build.Needs)
}

func TestEditor_Apply_RemoveEdgeClearsNeed(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("test"),
		testutil.CreateTestJob("build", testutil.WithNeeds("test")),
	)))

	state, err := ed.Apply(ctx, editor.RemoveEdge("dep-job-test-job-build"))
	require.NoError(t, err)

	build, ok := state.Document.JobByID("build")
	require.True(t, ok)
	assert.Empty(t, build.Needs)
}

func TestEditor_Apply_RemoveJobCascades(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("test"),
		testutil.CreateTestJob("build", testutil.WithNeeds("test")),
	)))

	state, err := ed.Apply(ctx, editor.RemoveNode("job-test"))
	require.NoError(t, err)

	_, jobLeft := state.Graph.NodeByID("job-test")
	_, stepLeft := state.Graph.NodeByID("job-test-step-0")
	assert.False(t, jobLeft)
	assert.False(t, stepLeft)

	for _, edge := range state.Graph.Edges {
		assert.NotEqual(t, "job-test", edge.Source)
		assert.NotEqual(t, "job-test", edge.Target)
	}

	// The dependent job survives with the stale need dropped by resync.
	build, ok := state.Document.JobByID("build")
	require.True(t, ok)
	assert.Empty(t, build.Needs)
	require.Len(t, state.Document.Jobs, 1)
}

func TestEditor_Apply_GraphEditPreservesMetadata(t *testing.T) {
	ctx := context.Background()

	workflow := testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.Name = "Release"
		w.RunName = "release-${{ github.sha }}"
		w.Env = map[string]string{"CI": "true"}
		w.Permissions = map[string]any{"contents": "read"}
	})

	ed := editor.New(workflow)

	state, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 1, Y: 2}))
	require.NoError(t, err)

	assert.Equal(t, "Release", state.Document.Name)
	assert.Equal(t, "release-${{ github.sha }}", state.Document.RunName)
	assert.Equal(t, map[string]string{"CI": "true"}, state.Document.Env)
	assert.Equal(t, map[string]any{"contents": "read"}, state.Document.Permissions)
}

func TestEditor_Apply_ReplaceDocumentRebuildsGraph(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	replacement := testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("deploy"),
	))

	state, err := ed.Apply(ctx, editor.ReplaceDocument(replacement))
	require.NoError(t, err)

	_, oldJob := state.Graph.NodeByID("job-build")
	_, newJob := state.Graph.NodeByID("job-deploy")
	assert.False(t, oldJob)
	assert.True(t, newJob)
}

func TestEditor_Apply_ReplaceDocumentNilRejected(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	_, err := ed.Apply(ctx, editor.ReplaceDocument(nil))
	assert.ErrorIs(t, err, editor.ErrNilDocument)
}

func TestEditor_Apply_UpdateMetadataKeepsGraphSemantics(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	state, err := ed.Apply(ctx, editor.UpdateMetadata(func(document *models.Workflow) {
		document.Name = "Renamed"
	}))
	require.NoError(t, err)

	assert.Equal(t, "Renamed", state.Document.Name)

	_, ok := state.Graph.NodeByID("job-build")
	assert.True(t, ok)
}

func TestEditor_Apply_UpdateNodeDataRenamesJob(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	job := testutil.CreateTestJob("build", testutil.WithJobName("Build it"))

	state, err := ed.Apply(ctx, editor.UpdateNodeData("job-build", models.JobData{
		Label: "Build it",
		Job:   job,
	}))
	require.NoError(t, err)

	updated, ok := state.Document.JobByID("build")
	require.True(t, ok)
	assert.Equal(t, "Build it", updated.Name)
}

func TestEditor_Apply_AddNodeDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	node := &models.Node{
		ID:   "job-build",
		Kind: models.NodeKindJob,
		Data: models.JobData{Label: "build", Job: testutil.CreateTestJob("build")},
	}

	_, err := ed.Apply(ctx, editor.AddNode(node))
	assert.ErrorIs(t, err, editor.ErrNodeAlreadyExists)
}

func TestEditor_Apply_AddNodeSyncsNewJobIntoDocument(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	node := &models.Node{
		ID:   "job-deploy",
		Kind: models.NodeKindJob,
		Data: models.JobData{Label: "deploy", Job: testutil.CreateTestJob("deploy")},
	}

	state, err := ed.Apply(ctx, editor.AddNode(node))
	require.NoError(t, err)

	_, ok := state.Document.JobByID("deploy")
	assert.True(t, ok)
}

func TestEditor_Select(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	state, err := ed.Apply(ctx, editor.Select("job-build"))
	require.NoError(t, err)
	assert.Equal(t, "job-build", state.Selection)

	_, err = ed.Apply(ctx, editor.Select("job-nope"))
	assert.ErrorIs(t, err, editor.ErrNodeNotFound)

	state, err = ed.Apply(ctx, editor.Select(""))
	require.NoError(t, err)
	assert.Empty(t, state.Selection)
}

func TestEditor_Apply_RemoveSelectedNodeClearsSelection(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("test"),
		testutil.CreateTestJob("build"),
	)))

	_, err := ed.Apply(ctx, editor.Select("job-test"))
	require.NoError(t, err)

	state, err := ed.Apply(ctx, editor.RemoveNode("job-test"))
	require.NoError(t, err)

	assert.Empty(t, state.Selection)
}

func TestEditor_Apply_InvalidStateIsReported(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	// Deleting the only job leaves an invalid document; the edit still
	// commits and validation flags it.
	_, err := ed.Apply(ctx, editor.RemoveNode("job-build"))
	require.NoError(t, err)

	issues := ed.Issues()
	require.NotEmpty(t, issues)

	found := false
	for _, issue := range issues {
		if issue.Code == models.IssueNoJobs {
			found = true
		}
	}

	assert.True(t, found)
}

func TestEditor_Restore_BypassesMappers(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	snapshot := ed.State()

	node, ok := snapshot.Graph.NodeByID("job-build")
	require.True(t, ok)
	node.Position = models.Position{X: -42, Y: 17}

	ed.Restore(ctx, snapshot)

	state := ed.State()
	restored, ok := state.Graph.NodeByID("job-build")
	require.True(t, ok)

	// A resync would have re-laid the node out; restore keeps it verbatim.
	assert.Equal(t, models.Position{X: -42, Y: 17}, restored.Position)
}

func TestEditor_Apply_ReturnsWhileSubscriberReadsState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	ed := editor.New(testutil.CreateTestWorkflow(), editor.WithPublisher(pubsub))

	messages, err := pubsub.Subscribe(ctx, editor.EditTopic)
	require.NoError(t, err)

	go func() {
		for msg := range messages {
			// Reading editor state before acking must not block the edit:
			// the event is published after the editor released its lock.
			_ = ed.State()
			msg.Ack()
		}
	}()

	done := make(chan struct{})

	go func() {
		_, applyErr := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 3, Y: 3}))
		assert.NoError(t, applyErr)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("apply did not return while a subscriber reads editor state")
	}

	assert.Equal(t, int64(1), ed.Revision())
}

func TestEditor_AutoArrange(t *testing.T) {
	ctx := context.Background()
	ed := editor.New(testutil.CreateTestWorkflow())

	_, err := ed.Apply(ctx, editor.MoveNode("job-build", models.Position{X: 5000, Y: 5000}))
	require.NoError(t, err)

	state, err := ed.Apply(ctx, editor.AutoArrange())
	require.NoError(t, err)

	node, ok := state.Graph.NodeByID("job-build")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 80, Y: 180}, node.Position)
}
