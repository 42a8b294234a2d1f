// Package testutil provides test data builders for documents and graphs.
package testutil

import (
	"github.com/pipeboard/pipeboard/pkg/models"
)

// CreateTestWorkflow creates a valid single-job workflow that can be adjusted
// with overrides.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		Name:     "Test Workflow",
		Triggers: []models.Trigger{{Kind: "push"}},
		Jobs: []*models.Job{
			CreateTestJob("build"),
		},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// CreateTestJob creates a runnable job with one command step.
func CreateTestJob(id string, overrides ...func(*models.Job)) *models.Job {
	job := &models.Job{
		ID:     id,
		RunsOn: []string{"ubuntu-latest"},
		Steps: []models.Step{
			{Run: "make " + id},
		},
	}

	for _, override := range overrides {
		override(job)
	}

	return job
}

// WithTriggers replaces the workflow's triggers.
func WithTriggers(triggers ...models.Trigger) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Triggers = triggers
	}
}

// WithJobs replaces the workflow's jobs.
func WithJobs(jobs ...*models.Job) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Jobs = jobs
	}
}

// WithNeeds sets the job's dependencies.
func WithNeeds(needs ...string) func(*models.Job) {
	return func(j *models.Job) {
		j.Needs = needs
	}
}

// WithSteps replaces the job's steps.
func WithSteps(steps ...models.Step) func(*models.Job) {
	return func(j *models.Job) {
		j.Steps = steps
	}
}

// WithJobName sets the job's display name.
func WithJobName(name string) func(*models.Job) {
	return func(j *models.Job) {
		j.Name = name
	}
}
