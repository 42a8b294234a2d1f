package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobNodeID_RoundTrip(t *testing.T) {
	id := JobNodeID("build")
	assert.Equal(t, "job-build", id)

	jobID, ok := ParseJobNodeID(id)
	assert.True(t, ok)
	assert.Equal(t, "build", jobID)
}

func TestParseJobNodeID_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		nodeID string
	}{
		{"wrong prefix", "step-build"},
		{"empty id", "job-"},
		{"trigger node", TriggerNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseJobNodeID(tt.nodeID)
			assert.False(t, ok)
		})
	}
}

func TestStepNodeID_RoundTrip(t *testing.T) {
	id := StepNodeID("job-build", 2)
	assert.Equal(t, "job-build-step-2", id)

	jobNodeID, index, ok := ParseStepNodeID(id)
	assert.True(t, ok)
	assert.Equal(t, "job-build", jobNodeID)
	assert.Equal(t, 2, index)
}

func TestParseStepNodeID_SeparatorInJobID(t *testing.T) {
	// A job literally named "pre-step-1" must still parse: the last
	// separator wins.
	id := StepNodeID(JobNodeID("pre-step-1"), 0)

	jobNodeID, index, ok := ParseStepNodeID(id)
	assert.True(t, ok)
	assert.Equal(t, "job-pre-step-1", jobNodeID)
	assert.Equal(t, 0, index)
}

func TestParseStepNodeID_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		nodeID string
	}{
		{"no separator", "job-build"},
		{"non numeric index", "job-build-step-x"},
		{"negative index", "job-build-step--1"},
		{"empty prefix", "-step-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := ParseStepNodeID(tt.nodeID)
			assert.False(t, ok)
		})
	}
}
