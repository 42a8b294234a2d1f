package editor

import (
	"errors"
	"fmt"

	"github.com/pipeboard/pipeboard/pkg/canvas"
	"github.com/pipeboard/pipeboard/pkg/models"
)

// Static error variables for command failures.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrEdgeNotFound       = errors.New("edge not found")
	ErrNodeAlreadyExists  = errors.New("node already exists")
	ErrConnectionRejected = errors.New("connection rejected")
	ErrNilDocument        = errors.New("document cannot be nil")
)

// IsConnectionRejected reports whether an error is a connection verdict
// rather than a structural failure.
func IsConnectionRejected(err error) bool {
	return errors.Is(err, ErrConnectionRejected)
}

// Command is one edit applied to the editor state. Apply returns the next
// state; it must not mutate the input.
type Command interface {
	Name() string
	Apply(state State) (State, error)
}

type command struct {
	name  string
	apply func(state State) (State, error)
}

func (c command) Name() string                     { return c.name }
func (c command) Apply(state State) (State, error) { return c.apply(state) }

// graphCommand wraps a graph mutation with the always-resync rule: after the
// mutation the document is rebuilt from the graph, with document-level
// metadata carried over from the previous document.
func graphCommand(name string, mutate func(state *State) error) Command {
	return command{
		name: name,
		apply: func(state State) (State, error) {
			next := state.Clone()

			if err := mutate(&next); err != nil {
				return state, err
			}

			next.Document = syncFromVisual(state.Document, next.Graph)

			return next, nil
		},
	}
}

// documentCommand wraps a document mutation with the opposite resync: the
// graph is rebuilt by the forward mapper and laid out.
func documentCommand(name string, mutate func(state *State) error) Command {
	return command{
		name: name,
		apply: func(state State) (State, error) {
			next := state.Clone()

			if err := mutate(&next); err != nil {
				return state, err
			}

			next.Graph = canvas.Arrange(canvas.MapDocument(next.Document))

			return next, nil
		},
	}
}

// syncFromVisual rebuilds the document from the graph, preserving the
// metadata the reverse mapper does not recover.
func syncFromVisual(previous *models.Workflow, graph *models.Graph) *models.Workflow {
	document := canvas.MapGraph(graph)

	if previous != nil {
		document.Name = previous.Name
		document.RunName = previous.RunName
		document.Env = previous.Env
		document.Permissions = previous.Permissions
		document.Defaults = previous.Defaults
		document.Concurrency = previous.Concurrency
	}

	return document
}

// AddNode inserts a node into the graph.
func AddNode(node *models.Node) Command {
	return graphCommand("add_node", func(state *State) error {
		if _, exists := state.Graph.NodeByID(node.ID); exists {
			return fmt.Errorf("%w: %s", ErrNodeAlreadyExists, node.ID)
		}

		copied := *node
		if node.Data != nil {
			copied.Data = node.Data.CloneData()
		}

		state.Graph.Nodes = append(state.Graph.Nodes, &copied)

		return nil
	})
}

// UpdateNodeData replaces a node's payload.
func UpdateNodeData(nodeID string, data models.NodeData) Command {
	return graphCommand("update_node", func(state *State) error {
		node, ok := state.Graph.NodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		node.Data = data.CloneData()
		node.Kind = data.NodeKind()

		return nil
	})
}

// MoveNode updates a node's position. Positions are presentation state, so
// the document resync it triggers is a semantic no-op; the command still goes
// through the combinator so the invariant "every graph edit resyncs" holds
// uniformly.
func MoveNode(nodeID string, position models.Position) Command {
	return graphCommand("move_node", func(state *State) error {
		node, ok := state.Graph.NodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		node.Position = position

		return nil
	})
}

// RemoveNode deletes a node, every edge incident to it and, for job nodes,
// every step node the job owns.
func RemoveNode(nodeID string) Command {
	return graphCommand("remove_node", func(state *State) error {
		node, ok := state.Graph.NodeByID(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		doomed := map[string]bool{nodeID: true}

		if node.Kind == models.NodeKindJob {
			for _, candidate := range state.Graph.Nodes {
				if candidate.Kind == models.NodeKindStep && stepBelongsTo(candidate, node) {
					doomed[candidate.ID] = true
				}
			}
		}

		nodes := make([]*models.Node, 0, len(state.Graph.Nodes))
		for _, candidate := range state.Graph.Nodes {
			if !doomed[candidate.ID] {
				nodes = append(nodes, candidate)
			}
		}

		edges := make([]*models.Edge, 0, len(state.Graph.Edges))
		for _, edge := range state.Graph.Edges {
			if !doomed[edge.Source] && !doomed[edge.Target] {
				edges = append(edges, edge)
			}
		}

		state.Graph.Nodes = nodes
		state.Graph.Edges = edges

		if doomed[state.Selection] {
			state.Selection = ""
		}

		return nil
	})
}

func stepBelongsTo(step, job *models.Node) bool {
	if data, ok := step.Data.(models.StepData); ok && data.JobID != "" {
		jobID, parsed := models.ParseJobNodeID(job.ID)
		if jobData, hasData := job.Data.(models.JobData); hasData && jobData.Job != nil {
			jobID, parsed = jobData.Job.ID, true
		}

		return parsed && data.JobID == jobID
	}

	jobNodeID, _, ok := models.ParseStepNodeID(step.ID)

	return ok && jobNodeID == job.ID
}

// AddEdge connects two nodes after running the connection validator. The edge
// kind is derived from the endpoint kinds: job->job is a dependency,
// everything else permitted is flow.
func AddEdge(sourceID, targetID string) Command {
	return graphCommand("add_edge", func(state *State) error {
		check := canvas.CheckConnection(state.Graph, sourceID, targetID)
		if !check.OK {
			return fmt.Errorf("%w: %s", ErrConnectionRejected, check.Reason)
		}

		source, _ := state.Graph.NodeByID(sourceID)
		target, _ := state.Graph.NodeByID(targetID)

		kind := models.EdgeKindFlow
		prefix := "flow-"

		if source.Kind == models.NodeKindJob && target.Kind == models.NodeKindJob {
			kind = models.EdgeKindDependency
			prefix = "dep-"
		}

		state.Graph.Edges = append(state.Graph.Edges, &models.Edge{
			ID:     prefix + sourceID + "-" + targetID,
			Source: sourceID,
			Target: targetID,
			Kind:   kind,
		})

		return nil
	})
}

// RemoveEdge deletes an edge by id.
func RemoveEdge(edgeID string) Command {
	return graphCommand("remove_edge", func(state *State) error {
		for i, edge := range state.Graph.Edges {
			if edge.ID == edgeID {
				state.Graph.Edges = append(state.Graph.Edges[:i], state.Graph.Edges[i+1:]...)

				return nil
			}
		}

		return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	})
}

// ReplaceDocument swaps the whole document (import, template load) and
// re-derives the graph. The replacement plus resync happens inside one
// command application, so a partially applied import is never observable.
func ReplaceDocument(document *models.Workflow) Command {
	return documentCommand("replace_document", func(state *State) error {
		if document == nil {
			return ErrNilDocument
		}

		state.Document = document.Clone()
		state.Selection = ""

		return nil
	})
}

// UpdateMetadata mutates document-level fields that have no graph
// representation.
func UpdateMetadata(mutate func(document *models.Workflow)) Command {
	return documentCommand("update_metadata", func(state *State) error {
		mutate(state.Document)

		return nil
	})
}

// AutoArrange re-runs the layout pass over the current graph without touching
// the document.
func AutoArrange() Command {
	return command{
		name: "auto_arrange",
		apply: func(state State) (State, error) {
			next := state.Clone()
			next.Graph = canvas.Arrange(next.Graph)

			return next, nil
		},
	}
}

// Select marks a single node as active for the properties view. Selection has
// no effect on either representation.
func Select(nodeID string) Command {
	return command{
		name: "select",
		apply: func(state State) (State, error) {
			if nodeID != "" {
				if _, ok := state.Graph.NodeByID(nodeID); !ok {
					return state, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
				}
			}

			next := state.Clone()
			next.Selection = nodeID

			return next, nil
		},
	}
}
