package canvas

import "github.com/pipeboard/pipeboard/pkg/models"

// Layout constants. Spacing is fixed, never derived from content size; the
// node widths exist only for the step centering offset.
const (
	layoutBaseX = 80.0

	jobRowY     = 180.0
	jobSpacingX = 280.0

	triggerRowY     = 40.0
	triggerSpacingX = 280.0

	jobNodeWidth  = 220.0
	stepNodeWidth = 180.0

	stepOffsetY  = 120.0
	stepSpacingY = 90.0
)

// Arrange assigns final coordinates to every node as a pure function of node
// kind, identifiers and topology. Incoming positions are ignored entirely, so
// arranging an already-arranged graph is a no-op and "auto-arrange" can run
// at any time. The input graph is not mutated.
func Arrange(graph *models.Graph) *models.Graph {
	arranged := graph.Clone()

	jobX := make(map[string]float64)

	jobCount := 0

	for _, node := range arranged.Nodes {
		if node.Kind != models.NodeKindJob {
			continue
		}

		x := layoutBaseX + float64(jobCount)*jobSpacingX
		node.Position = models.Position{X: x, Y: jobRowY}

		if jobID, ok := jobIDOfNode(node); ok {
			jobX[jobID] = x
		}

		jobCount++
	}

	arrangeTriggers(arranged, jobCount)
	arrangeSteps(arranged, jobX)

	return arranged
}

// arrangeTriggers centers trigger nodes over the span of the job row, spread
// symmetrically when there is more than one. With no jobs they fall back to a
// plain left-to-right row.
func arrangeTriggers(graph *models.Graph, jobCount int) {
	triggers := make([]*models.Node, 0, 1)

	for _, node := range graph.Nodes {
		if node.Kind == models.NodeKindTrigger {
			triggers = append(triggers, node)
		}
	}

	if len(triggers) == 0 {
		return
	}

	if jobCount == 0 {
		for i, node := range triggers {
			node.Position = models.Position{X: layoutBaseX + float64(i)*triggerSpacingX, Y: triggerRowY}
		}

		return
	}

	first := layoutBaseX
	last := layoutBaseX + float64(jobCount-1)*jobSpacingX
	center := (first + last) / 2

	span := float64(len(triggers)-1) * triggerSpacingX

	for i, node := range triggers {
		node.Position = models.Position{
			X: center - span/2 + float64(i)*triggerSpacingX,
			Y: triggerRowY,
		}
	}
}

// arrangeSteps stacks each step beneath its owning job node, offset to center
// the narrower step under the wider job, ordered by the step's ordinal. Steps
// whose owner is missing from the graph get a deterministic fallback row.
func arrangeSteps(graph *models.Graph, jobX map[string]float64) {
	orphans := 0

	for _, node := range graph.Nodes {
		if node.Kind != models.NodeKindStep {
			continue
		}

		jobID, index := stepOwner(node)

		x, ok := jobX[jobID]
		if !ok {
			node.Position = models.Position{
				X: layoutBaseX + float64(orphans)*jobSpacingX,
				Y: jobRowY + stepOffsetY,
			}
			orphans++

			continue
		}

		node.Position = models.Position{
			X: x + (jobNodeWidth-stepNodeWidth)/2,
			Y: jobRowY + stepOffsetY + float64(index)*stepSpacingY,
		}
	}
}

func stepOwner(node *models.Node) (string, int) {
	if data, ok := node.Data.(models.StepData); ok && data.JobID != "" {
		return data.JobID, data.Index
	}

	jobNodeID, index, ok := models.ParseStepNodeID(node.ID)
	if !ok {
		return "", 0
	}

	jobID, ok := models.ParseJobNodeID(jobNodeID)
	if !ok {
		return "", 0
	}

	return jobID, index
}
