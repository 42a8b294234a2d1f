package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{
			name: "trigger node",
			node: &Node{
				ID:       TriggerNodeID,
				Kind:     NodeKindTrigger,
				Position: Position{X: 360, Y: 40},
				Data: TriggerData{
					Label:    "On push",
					Triggers: []Trigger{{Kind: "push", Config: map[string]any{"branches": []any{"main"}}}},
				},
			},
		},
		{
			name: "job node",
			node: &Node{
				ID:       "job-build",
				Kind:     NodeKindJob,
				Position: Position{X: 80, Y: 180},
				Data: JobData{
					Label: "build",
					Job:   &Job{ID: "build", RunsOn: []string{"ubuntu-latest"}, Steps: []Step{{Run: "make"}}},
				},
			},
		},
		{
			name: "step node",
			node: &Node{
				ID:       "job-build-step-0",
				Kind:     NodeKindStep,
				Position: Position{X: 100, Y: 300},
				Data: StepData{
					Label: "Checkout",
					JobID: "build",
					Index: 0,
					Step:  &Step{Name: "Checkout", Uses: "actions/checkout@v4"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.node)
			require.NoError(t, err)

			var decoded Node
			require.NoError(t, json.Unmarshal(raw, &decoded))

			assert.Equal(t, tt.node.ID, decoded.ID)
			assert.Equal(t, tt.node.Kind, decoded.Kind)
			assert.Equal(t, tt.node.Position, decoded.Position)
			assert.Equal(t, tt.node.Data, decoded.Data)
		})
	}
}

func TestNode_UnmarshalJSON_UnknownKind(t *testing.T) {
	var node Node

	err := json.Unmarshal([]byte(`{"id":"x","kind":"widget","data":{}}`), &node)
	assert.Error(t, err)
}

func TestGraph_Clone_IsDeep(t *testing.T) {
	graph := &Graph{
		Nodes: []*Node{
			{
				ID:   "job-build",
				Kind: NodeKindJob,
				Data: JobData{Label: "build", Job: &Job{ID: "build", RunsOn: []string{"x"}, Steps: []Step{{Run: "make"}}}},
			},
		},
		Edges: []*Edge{
			{ID: "flow-trigger-job-build", Source: TriggerNodeID, Target: "job-build", Kind: EdgeKindFlow},
		},
	}

	clone := graph.Clone()
	clone.Nodes[0].Position.X = 999
	clone.Nodes[0].Data.(JobData).Job.Steps[0].Run = "changed"
	clone.Edges[0].Target = "elsewhere"

	assert.Equal(t, float64(0), graph.Nodes[0].Position.X)
	assert.Equal(t, "make", graph.Nodes[0].Data.(JobData).Job.Steps[0].Run)
	assert.Equal(t, "job-build", graph.Edges[0].Target)
}

func TestGraph_EdgesFromTo(t *testing.T) {
	graph := &Graph{
		Edges: []*Edge{
			{ID: "a", Source: "n1", Target: "n2", Kind: EdgeKindFlow},
			{ID: "b", Source: "n1", Target: "n3", Kind: EdgeKindFlow},
			{ID: "c", Source: "n2", Target: "n3", Kind: EdgeKindDependency},
		},
	}

	assert.Len(t, graph.EdgesFrom("n1"), 2)
	assert.Len(t, graph.EdgesTo("n3"), 2)
	assert.Empty(t, graph.EdgesFrom("n3"))
}
