package canvas

import (
	"fmt"

	"github.com/pipeboard/pipeboard/pkg/models"
)

// ConnectionCheck is the verdict on a proposed edge. Reason is a
// human-readable explanation suitable for surfacing in the UI.
type ConnectionCheck struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func accept() ConnectionCheck {
	return ConnectionCheck{OK: true}
}

func reject(format string, args ...any) ConnectionCheck {
	return ConnectionCheck{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// AllowedConnection reports whether the given node-kind pair may ever be
// connected. Permitted pairs are trigger->job, job->job and job->step;
// everything else, including any step-sourced pair, is rejected.
func AllowedConnection(source, target models.NodeKind) bool {
	switch source {
	case models.NodeKindTrigger:
		return target == models.NodeKindJob
	case models.NodeKindJob:
		return target == models.NodeKindJob || target == models.NodeKindStep
	default:
		return false
	}
}

// CheckConnection validates a proposed edge between two existing nodes:
// the kind pair must be permitted, the edge must not already exist, and the
// edge must not close a cycle. It never returns an error; an invalid proposal
// is a verdict, not a failure.
func CheckConnection(graph *models.Graph, sourceID, targetID string) ConnectionCheck {
	source, ok := graph.NodeByID(sourceID)
	if !ok {
		return reject("source node %q does not exist", sourceID)
	}

	target, ok := graph.NodeByID(targetID)
	if !ok {
		return reject("target node %q does not exist", targetID)
	}

	if !AllowedConnection(source.Kind, target.Kind) {
		return reject("%s nodes cannot connect to %s nodes", source.Kind, target.Kind)
	}

	for _, edge := range graph.Edges {
		if edge.Source == sourceID && edge.Target == targetID {
			return reject("a connection from %q to %q already exists", sourceID, targetID)
		}
	}

	if sourceID == targetID || reachable(graph, targetID, sourceID) {
		return reject("connecting %q to %q would create a cycle", sourceID, targetID)
	}

	return accept()
}

// reachable reports whether to can be reached from from by following existing
// edges, depth first.
func reachable(graph *models.Graph, from, to string) bool {
	visited := make(map[string]bool)
	stack := []string{from}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == to {
			return true
		}

		if visited[current] {
			continue
		}

		visited[current] = true

		for _, edge := range graph.Edges {
			if edge.Source == current {
				stack = append(stack, edge.Target)
			}
		}
	}

	return false
}
