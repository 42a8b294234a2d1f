// Package models defines graph models for the visual workflow projection.
package models

import (
	"encoding/json"
	"fmt"
	"maps"
)

// NodeKind is the category of a graph node.
type NodeKind string

const (
	NodeKindTrigger NodeKind = "trigger"
	NodeKindJob     NodeKind = "job"
	NodeKindStep    NodeKind = "step"
)

// EdgeKind is the category of a graph edge.
type EdgeKind string

const (
	// EdgeKindFlow is a sequencing edge: trigger->job, job->step or step->step.
	EdgeKindFlow EdgeKind = "flow"
	// EdgeKindDependency is a job-to-job "needs" relation.
	EdgeKindDependency EdgeKind = "dependency"
)

// Position is a node's canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the kind-tagged payload of a node. Exactly one concrete type
// exists per node kind; consumers type-switch exhaustively.
type NodeData interface {
	NodeKind() NodeKind
	CloneData() NodeData
}

// TriggerData carries the document's trigger configuration verbatim so the
// reverse mapping can round-trip it.
type TriggerData struct {
	Label    string    `json:"label"`
	Triggers []Trigger `json:"triggers,omitempty"`
}

// JobData carries the full job payload so document fields not represented in
// the graph survive a round trip.
type JobData struct {
	Label string `json:"label"`
	Job   *Job   `json:"job"`
}

// StepData carries the step payload plus structural ownership: JobID and
// Index are the source of truth for which job owns the step and where it
// sits, the node id convention is merely a derived lookup key.
type StepData struct {
	Label string `json:"label"`
	JobID string `json:"job_id"`
	Index int    `json:"index"`
	Step  *Step  `json:"step"`
}

func (TriggerData) NodeKind() NodeKind { return NodeKindTrigger }
func (JobData) NodeKind() NodeKind     { return NodeKindJob }
func (StepData) NodeKind() NodeKind    { return NodeKindStep }

func (d TriggerData) CloneData() NodeData {
	clone := TriggerData{Label: d.Label}
	if d.Triggers != nil {
		clone.Triggers = make([]Trigger, len(d.Triggers))
		for i, trigger := range d.Triggers {
			clone.Triggers[i] = Trigger{Kind: trigger.Kind, Config: maps.Clone(trigger.Config)}
		}
	}

	return clone
}

func (d JobData) CloneData() NodeData {
	return JobData{Label: d.Label, Job: d.Job.Clone()}
}

func (d StepData) CloneData() NodeData {
	return StepData{Label: d.Label, JobID: d.JobID, Index: d.Index, Step: d.Step.Clone()}
}

// Node is one element of the visual graph.
type Node struct {
	ID       string   `json:"id"       validate:"required"`
	Kind     NodeKind `json:"kind"     validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string   `json:"id"     validate:"required"`
	Source string   `json:"source" validate:"required"`
	Target string   `json:"target" validate:"required"`
	Kind   EdgeKind `json:"kind"   validate:"required"`
}

// Graph is the disposable visual projection of a workflow document.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NodeByID looks a node up by its identifier.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// EdgesFrom returns all edges whose source is the given node.
func (g *Graph) EdgesFrom(nodeID string) []*Edge {
	edges := make([]*Edge, 0)

	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// EdgesTo returns all edges whose target is the given node.
func (g *Graph) EdgesTo(nodeID string) []*Edge {
	edges := make([]*Edge, 0)

	for _, edge := range g.Edges {
		if edge.Target == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}

	clone := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Edges: make([]*Edge, len(g.Edges)),
	}

	for i, node := range g.Nodes {
		copied := *node
		if node.Data != nil {
			copied.Data = node.Data.CloneData()
		}

		clone.Nodes[i] = &copied
	}

	for i, edge := range g.Edges {
		copied := *edge
		clone.Edges[i] = &copied
	}

	return clone
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Kind     NodeKind        `json:"kind"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the node with its kind-tagged payload.
func (n *Node) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if n.Data != nil {
		data, err = json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal node %s data: %w", n.ID, err)
		}
	}

	return json.Marshal(nodeJSON{ID: n.ID, Kind: n.Kind, Position: n.Position, Data: data})
}

// UnmarshalJSON decodes the node, selecting the payload type from the kind tag.
func (n *Node) UnmarshalJSON(raw []byte) error {
	var decoded nodeJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	n.ID = decoded.ID
	n.Kind = decoded.Kind
	n.Position = decoded.Position
	n.Data = nil

	if len(decoded.Data) == 0 {
		return nil
	}

	switch decoded.Kind {
	case NodeKindTrigger:
		var data TriggerData
		if err := json.Unmarshal(decoded.Data, &data); err != nil {
			return err
		}

		n.Data = data
	case NodeKindJob:
		var data JobData
		if err := json.Unmarshal(decoded.Data, &data); err != nil {
			return err
		}

		n.Data = data
	case NodeKindStep:
		var data StepData
		if err := json.Unmarshal(decoded.Data, &data); err != nil {
			return err
		}

		n.Data = data
	default:
		return fmt.Errorf("unknown node kind %q for node %s", decoded.Kind, decoded.ID)
	}

	return nil
}
