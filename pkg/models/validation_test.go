package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWorkflow() *Workflow {
	return &Workflow{
		Name:     "CI",
		Triggers: []Trigger{{Kind: "push"}},
		Jobs: []*Job{
			{ID: "build", RunsOn: []string{"ubuntu-latest"}, Steps: []Step{{Run: "make build"}}},
		},
	}
}

func codes(issues []Issue) []IssueCode {
	collected := make([]IssueCode, 0, len(issues))
	for _, issue := range issues {
		collected = append(collected, issue.Code)
	}

	return collected
}

func TestValidateWorkflow_Valid(t *testing.T) {
	assert.Empty(t, ValidateWorkflow(validWorkflow()))
}

func TestValidateWorkflow_MissingName(t *testing.T) {
	workflow := validWorkflow()
	workflow.Name = ""

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueMissingName)
}

func TestValidateWorkflow_MissingTriggers(t *testing.T) {
	workflow := validWorkflow()
	workflow.Triggers = nil

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueMissingTriggers)
}

func TestValidateWorkflow_NoJobs(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs = nil

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueNoJobs)
}

func TestValidateWorkflow_BadJobID(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].ID = "1-starts-with-digit"

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueBadJobID)
}

func TestValidateWorkflow_MissingRunner(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].RunsOn = nil

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueMissingRunner)
}

func TestValidateWorkflow_EmptySteps(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].Steps = nil

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueNoSteps)
}

func TestValidateWorkflow_StepShape(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].Steps = []Step{
		{Uses: "actions/checkout@v4", Run: "make build"}, // both
		{Name: "empty"},                                  // neither
	}

	issues := ValidateWorkflow(workflow)

	shapeIssues := 0
	for _, issue := range issues {
		if issue.Code == IssueStepShape {
			shapeIssues++
		}
	}

	assert.Equal(t, 2, shapeIssues)
}

func TestValidateWorkflow_UnknownNeed(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].Needs = []string{"ghost"}

	issues := ValidateWorkflow(workflow)

	require.Len(t, issues, 1)
	assert.Equal(t, IssueUnknownNeed, issues[0].Code)
	assert.Equal(t, "jobs.build.needs", issues[0].Location)
}

func TestValidateWorkflow_DependencyCycle(t *testing.T) {
	workflow := &Workflow{
		Name:     "CI",
		Triggers: []Trigger{{Kind: "push"}},
		Jobs: []*Job{
			{ID: "a", RunsOn: []string{"x"}, Needs: []string{"b"}, Steps: []Step{{Run: "a"}}},
			{ID: "b", RunsOn: []string{"x"}, Needs: []string{"a"}, Steps: []Step{{Run: "b"}}},
		},
	}

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueDependencyCycle)
}

func TestValidateWorkflow_BadTimeout(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs[0].TimeoutMinutes = -5

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueBadTimeout)
}

func TestValidateWorkflow_DuplicateJobID(t *testing.T) {
	workflow := validWorkflow()
	workflow.Jobs = append(workflow.Jobs, &Job{
		ID: "build", RunsOn: []string{"x"}, Steps: []Step{{Run: "again"}},
	})

	assert.Contains(t, codes(ValidateWorkflow(workflow)), IssueDuplicateJobID)
}
