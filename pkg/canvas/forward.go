// Package canvas maps workflow documents to visual node/edge graphs and back,
// lays graphs out deterministically, and validates proposed connections.
package canvas

import (
	"fmt"
	"strings"

	"github.com/pipeboard/pipeboard/pkg/models"
)

// Placeholder grid used during emission. The layout pass overrides every
// position immediately afterwards; these are never final.
const (
	placeholderColumns  = 5
	placeholderSpacingX = 200
	placeholderSpacingY = 120
)

// MapDocument builds the visual graph for a workflow document. It is pure and
// total: dangling needs produce no edge, never an error. Positions are
// placeholders; run Arrange on the result for final coordinates.
func MapDocument(workflow *models.Workflow) *models.Graph {
	graph := &models.Graph{
		Nodes: make([]*models.Node, 0),
		Edges: make([]*models.Edge, 0),
	}

	emitted := 0

	emit := func(node *models.Node) {
		node.Position = placeholderPosition(emitted)
		emitted++

		graph.Nodes = append(graph.Nodes, node)
	}

	triggers := make([]models.Trigger, len(workflow.Triggers))
	for i, trigger := range workflow.Triggers {
		triggers[i] = models.Trigger{Kind: trigger.Kind, Config: trigger.Config}
	}

	emit(&models.Node{
		ID:   models.TriggerNodeID,
		Kind: models.NodeKindTrigger,
		Data: models.TriggerData{Label: TriggerLabel(workflow.Triggers), Triggers: triggers}.CloneData(),
	})

	for _, job := range PartitionJobs(workflow.Jobs) {
		jobNodeID := models.JobNodeID(job.ID)

		emit(&models.Node{
			ID:   jobNodeID,
			Kind: models.NodeKindJob,
			Data: models.JobData{Label: job.DisplayName(), Job: job.Clone()},
		})

		previous := jobNodeID

		for i, step := range job.Steps {
			stepNodeID := models.StepNodeID(jobNodeID, i)

			emit(&models.Node{
				ID:   stepNodeID,
				Kind: models.NodeKindStep,
				Data: models.StepData{Label: step.DisplayName(), JobID: job.ID, Index: i, Step: step.Clone()},
			})

			graph.Edges = append(graph.Edges, flowEdge(previous, stepNodeID))
			previous = stepNodeID
		}
	}

	for _, job := range workflow.Jobs {
		jobNodeID := models.JobNodeID(job.ID)

		if !job.HasNeeds() {
			graph.Edges = append(graph.Edges, flowEdge(models.TriggerNodeID, jobNodeID))

			continue
		}

		for _, need := range job.Needs {
			if _, ok := workflow.JobByID(need); !ok {
				// Dangling reference: tolerated, simply no edge.
				continue
			}

			graph.Edges = append(graph.Edges, dependencyEdge(models.JobNodeID(need), jobNodeID))
		}
	}

	return graph
}

// PartitionJobs orders independent jobs (no needs) before dependent ones,
// preserving each group's original relative order. This is a rendering hint
// consumed by the layout pass, not a topological sort: with chains deeper
// than one level a prerequisite may still land right of a dependent job.
func PartitionJobs(jobs []*models.Job) []*models.Job {
	independent := make([]*models.Job, 0, len(jobs))
	dependent := make([]*models.Job, 0)

	for _, job := range jobs {
		if job.HasNeeds() {
			dependent = append(dependent, job)
		} else {
			independent = append(independent, job)
		}
	}

	return append(independent, dependent...)
}

// TriggerLabel summarizes the active trigger kinds for display: a specific
// phrase for a single trigger, a comma list for up to three, a count beyond.
func TriggerLabel(triggers []models.Trigger) string {
	switch {
	case len(triggers) == 0:
		return "No triggers"
	case len(triggers) == 1:
		return triggerPhrase(triggers[0].Kind)
	case len(triggers) <= 3:
		kinds := make([]string, len(triggers))
		for i, trigger := range triggers {
			kinds[i] = trigger.Kind
		}

		return strings.Join(kinds, ", ")
	default:
		return fmt.Sprintf("%d triggers", len(triggers))
	}
}

func triggerPhrase(kind string) string {
	switch kind {
	case "push":
		return "On push"
	case "pull_request":
		return "On pull request"
	case "schedule":
		return "On schedule"
	case "workflow_dispatch":
		return "Manual trigger"
	case "release":
		return "On release"
	default:
		return "On " + kind
	}
}

func flowEdge(source, target string) *models.Edge {
	return &models.Edge{
		ID:     "flow-" + source + "-" + target,
		Source: source,
		Target: target,
		Kind:   models.EdgeKindFlow,
	}
}

func dependencyEdge(source, target string) *models.Edge {
	return &models.Edge{
		ID:     "dep-" + source + "-" + target,
		Source: source,
		Target: target,
		Kind:   models.EdgeKindDependency,
	}
}

func placeholderPosition(ordinal int) models.Position {
	return models.Position{
		X: float64((ordinal % placeholderColumns) * placeholderSpacingX),
		Y: float64((ordinal / placeholderColumns) * placeholderSpacingY),
	}
}
