package canvas_test

import (
	"testing"

	"github.com/pipeboard/pipeboard/pkg/canvas"
	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/pipeboard/pipeboard/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionOf(t *testing.T, graph *models.Graph, nodeID string) models.Position {
	t.Helper()

	node, ok := graph.NodeByID(nodeID)
	require.True(t, ok, "node %s not found", nodeID)

	return node.Position
}

func TestArrange_JobsLeftToRight(t *testing.T) {
	graph := canvas.Arrange(canvas.MapDocument(diamondWorkflow()))

	test := positionOf(t, graph, "job-test")
	lint := positionOf(t, graph, "job-lint")
	build := positionOf(t, graph, "job-build")

	assert.Equal(t, 80.0, test.X)
	assert.Equal(t, 360.0, lint.X)
	assert.Equal(t, 640.0, build.X)

	for _, p := range []models.Position{test, lint, build} {
		assert.Equal(t, 180.0, p.Y)
	}

	// Independent jobs land left of the dependent one.
	assert.Less(t, test.X, build.X)
	assert.Less(t, lint.X, build.X)
}

func TestArrange_TriggerCenteredOverJobs(t *testing.T) {
	graph := canvas.Arrange(canvas.MapDocument(diamondWorkflow()))

	trigger := positionOf(t, graph, models.TriggerNodeID)

	// Job row spans x=80..640, so the single trigger sits at the center.
	assert.Equal(t, 360.0, trigger.X)
	assert.Equal(t, 40.0, trigger.Y)
}

func TestArrange_TriggerRowWithoutJobs(t *testing.T) {
	workflow := testutil.CreateTestWorkflow(testutil.WithJobs())

	graph := canvas.Arrange(canvas.MapDocument(workflow))

	trigger := positionOf(t, graph, models.TriggerNodeID)
	assert.Equal(t, models.Position{X: 80, Y: 40}, trigger)
}

func TestArrange_StepsStackedUnderJob(t *testing.T) {
	workflow := testutil.CreateTestWorkflow(testutil.WithJobs(
		testutil.CreateTestJob("build", testutil.WithSteps(
			models.Step{Run: "one"},
			models.Step{Run: "two"},
			models.Step{Run: "three"},
		)),
	))

	graph := canvas.Arrange(canvas.MapDocument(workflow))

	job := positionOf(t, graph, "job-build")

	for i, expectY := range []float64{300, 390, 480} {
		step := positionOf(t, graph, models.StepNodeID("job-build", i))

		// Centered: (220-180)/2 = 20 to the right of the job.
		assert.Equal(t, job.X+20, step.X)
		assert.Equal(t, expectY, step.Y)
	}
}

func TestArrange_Idempotent(t *testing.T) {
	once := canvas.Arrange(canvas.MapDocument(diamondWorkflow()))
	twice := canvas.Arrange(once)

	assert.Equal(t, once, twice)
}

func TestArrange_IgnoresIncomingPositions(t *testing.T) {
	graph := canvas.MapDocument(testutil.CreateTestWorkflow())

	node, ok := graph.NodeByID("job-build")
	require.True(t, ok)
	node.Position = models.Position{X: -5000, Y: 9999}

	arranged := canvas.Arrange(graph)

	assert.Equal(t, models.Position{X: 80, Y: 180}, positionOf(t, arranged, "job-build"))
}

func TestArrange_DoesNotMutateInput(t *testing.T) {
	graph := canvas.MapDocument(testutil.CreateTestWorkflow())

	before := positionOf(t, graph, "job-build")
	canvas.Arrange(graph)

	assert.Equal(t, before, positionOf(t, graph, "job-build"))
}

func TestArrange_OrphanStepFallbackRow(t *testing.T) {
	graph := &models.Graph{
		Nodes: []*models.Node{
			{
				ID:   "job-gone-step-0",
				Kind: models.NodeKindStep,
				Data: models.StepData{JobID: "gone", Index: 0, Step: &models.Step{Run: "make"}},
			},
			{
				ID:   "job-gone-step-1",
				Kind: models.NodeKindStep,
				Data: models.StepData{JobID: "gone", Index: 1, Step: &models.Step{Run: "make"}},
			},
		},
	}

	arranged := canvas.Arrange(graph)

	assert.Equal(t, models.Position{X: 80, Y: 300}, positionOf(t, arranged, "job-gone-step-0"))
	assert.Equal(t, models.Position{X: 360, Y: 300}, positionOf(t, arranged, "job-gone-step-1"))
}
