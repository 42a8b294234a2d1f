// Package models defines the document and graph schemas for the pipeboard editor.
package models

import "maps"

// Workflow is the persisted document: the authoritative definition of a CI
// workflow. The visual graph is always derived from it, never the other way
// around, except during an interactive edit cycle (see pkg/editor).
type Workflow struct {
	Name        string            `json:"name"                  validate:"required,min=1"`
	RunName     string            `json:"run_name,omitempty"`
	Triggers    []Trigger         `json:"triggers"              validate:"required,min=1"`
	Env         map[string]string `json:"env,omitempty"`
	Permissions map[string]any    `json:"permissions,omitempty"`
	Defaults    map[string]any    `json:"defaults,omitempty"`
	Concurrency map[string]any    `json:"concurrency,omitempty"`
	Jobs        []*Job            `json:"jobs"                  validate:"required,min=1"`
}

// Trigger is one entry of the document's trigger mapping. A nil Config is the
// empty marker (the trigger kind is active with no configuration).
type Trigger struct {
	Kind   string         `json:"kind"   validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// Job is a named unit of work with an ordered step list and optional
// dependencies on other jobs.
type Job struct {
	ID             string            `json:"id"                        validate:"required"`
	Name           string            `json:"name,omitempty"`
	RunsOn         []string          `json:"runs_on"                   validate:"required,min=1"`
	Needs          []string          `json:"needs,omitempty"`
	Steps          []Step            `json:"steps"                     validate:"required,min=1"`
	TimeoutMinutes int               `json:"timeout_minutes,omitempty"`
	Strategy       map[string]any    `json:"strategy,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	Permissions    map[string]any    `json:"permissions,omitempty"`
}

// Step is either an action invocation (Uses) or a shell command (Run),
// never both.
type Step struct {
	Name             string         `json:"name,omitempty"`
	Uses             string         `json:"uses,omitempty"`
	With             map[string]any `json:"with,omitempty"`
	Run              string         `json:"run,omitempty"`
	Shell            string         `json:"shell,omitempty"`
	WorkingDirectory string         `json:"working_directory,omitempty"`
	If               string         `json:"if,omitempty"`
	ContinueOnError  bool           `json:"continue_on_error,omitempty"`
}

// IsAction reports whether the step invokes a reusable action.
func (s *Step) IsAction() bool {
	return s.Uses != ""
}

// IsRun reports whether the step runs a shell command.
func (s *Step) IsRun() bool {
	return s.Run != ""
}

// DisplayName returns the label shown for the step in the graph.
func (s *Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	if s.Uses != "" {
		return s.Uses
	}

	return s.Run
}

// DisplayName returns the label shown for the job in the graph.
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}

	return j.ID
}

// HasNeeds reports whether the job declares any dependencies.
func (j *Job) HasNeeds() bool {
	return len(j.Needs) > 0
}

// JobByID looks a job up by its identifier.
func (w *Workflow) JobByID(id string) (*Job, bool) {
	for _, job := range w.Jobs {
		if job.ID == id {
			return job, true
		}
	}

	return nil, false
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := &Workflow{
		Name:        w.Name,
		RunName:     w.RunName,
		Env:         maps.Clone(w.Env),
		Permissions: maps.Clone(w.Permissions),
		Defaults:    maps.Clone(w.Defaults),
		Concurrency: maps.Clone(w.Concurrency),
	}

	if w.Triggers != nil {
		clone.Triggers = make([]Trigger, len(w.Triggers))
		for i, trigger := range w.Triggers {
			clone.Triggers[i] = Trigger{Kind: trigger.Kind, Config: maps.Clone(trigger.Config)}
		}
	}

	if w.Jobs != nil {
		clone.Jobs = make([]*Job, len(w.Jobs))
		for i, job := range w.Jobs {
			clone.Jobs[i] = job.Clone()
		}
	}

	return clone
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}

	clone := *j
	clone.RunsOn = append([]string(nil), j.RunsOn...)
	clone.Needs = append([]string(nil), j.Needs...)
	clone.Strategy = maps.Clone(j.Strategy)
	clone.Env = maps.Clone(j.Env)
	clone.Permissions = maps.Clone(j.Permissions)

	if j.Steps != nil {
		clone.Steps = make([]Step, len(j.Steps))
		for i, step := range j.Steps {
			clone.Steps[i] = *step.Clone()
		}
	}

	return &clone
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}

	clone := *s
	clone.With = maps.Clone(s.With)

	return &clone
}
