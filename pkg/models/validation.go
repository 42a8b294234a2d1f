package models

import (
	"fmt"
	"regexp"
)

// IssueCode classifies a structural validation problem.
type IssueCode string

const (
	IssueMissingName     IssueCode = "missing_name"
	IssueMissingTriggers IssueCode = "missing_triggers"
	IssueNoJobs          IssueCode = "no_jobs"
	IssueBadJobID        IssueCode = "bad_job_id"
	IssueDuplicateJobID  IssueCode = "duplicate_job_id"
	IssueMissingRunner   IssueCode = "missing_runner"
	IssueNoSteps         IssueCode = "no_steps"
	IssueStepShape       IssueCode = "step_shape"
	IssueUnknownNeed     IssueCode = "unknown_need"
	IssueDependencyCycle IssueCode = "dependency_cycle"
	IssueBadTimeout      IssueCode = "bad_timeout"
)

// Issue is one structural validation problem. Issues degrade the document's
// exportable status; they never abort mapping or layout.
type Issue struct {
	Location string    `json:"location"`
	Message  string    `json:"message"`
	Code     IssueCode `json:"code"`
}

var jobIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Timeouts above one week are treated as out of range.
const maxTimeoutMinutes = 10080

// ValidateWorkflow collects every structural problem in the document. It is
// total: a partially invalid workflow yields issues, never a panic or an
// aborted pass.
func ValidateWorkflow(workflow *Workflow) []Issue {
	issues := make([]Issue, 0)

	if workflow == nil {
		return append(issues, Issue{Location: "workflow", Message: "workflow is empty", Code: IssueNoJobs})
	}

	if workflow.Name == "" {
		issues = append(issues, Issue{Location: "name", Message: "workflow name is required", Code: IssueMissingName})
	}

	if len(workflow.Triggers) == 0 {
		issues = append(issues, Issue{Location: "on", Message: "workflow must declare at least one trigger", Code: IssueMissingTriggers})
	}

	if len(workflow.Jobs) == 0 {
		issues = append(issues, Issue{Location: "jobs", Message: "workflow must declare at least one job", Code: IssueNoJobs})
	}

	seen := make(map[string]bool, len(workflow.Jobs))

	for _, job := range workflow.Jobs {
		location := "jobs." + job.ID

		if !jobIDPattern.MatchString(job.ID) {
			issues = append(issues, Issue{
				Location: location,
				Message:  fmt.Sprintf("job id %q must start with a letter or underscore and contain only alphanumerics, - and _", job.ID),
				Code:     IssueBadJobID,
			})
		}

		if seen[job.ID] {
			issues = append(issues, Issue{
				Location: location,
				Message:  fmt.Sprintf("job id %q is declared more than once", job.ID),
				Code:     IssueDuplicateJobID,
			})
		}

		seen[job.ID] = true

		issues = append(issues, validateJob(location, workflow, job)...)
	}

	issues = append(issues, findDependencyCycles(workflow)...)

	return issues
}

func validateJob(location string, workflow *Workflow, job *Job) []Issue {
	issues := make([]Issue, 0)

	if len(job.RunsOn) == 0 {
		issues = append(issues, Issue{Location: location + ".runs-on", Message: "job must declare a runner", Code: IssueMissingRunner})
	}

	if len(job.Steps) == 0 {
		issues = append(issues, Issue{Location: location + ".steps", Message: "job must have at least one step", Code: IssueNoSteps})
	}

	if job.TimeoutMinutes < 0 || job.TimeoutMinutes > maxTimeoutMinutes {
		issues = append(issues, Issue{
			Location: location + ".timeout-minutes",
			Message:  fmt.Sprintf("timeout of %d minutes is out of range", job.TimeoutMinutes),
			Code:     IssueBadTimeout,
		})
	}

	for i, step := range job.Steps {
		stepLocation := fmt.Sprintf("%s.steps[%d]", location, i)

		switch {
		case step.IsAction() && step.IsRun():
			issues = append(issues, Issue{Location: stepLocation, Message: "step declares both an action and a command", Code: IssueStepShape})
		case !step.IsAction() && !step.IsRun():
			issues = append(issues, Issue{Location: stepLocation, Message: "step declares neither an action nor a command", Code: IssueStepShape})
		}
	}

	for _, need := range job.Needs {
		if _, ok := workflow.JobByID(need); !ok {
			issues = append(issues, Issue{
				Location: location + ".needs",
				Message:  fmt.Sprintf("job depends on unknown job %q", need),
				Code:     IssueUnknownNeed,
			})
		}
	}

	return issues
}

// findDependencyCycles walks the needs relation with a three-color DFS.
// Unknown needs are skipped here; they are reported separately.
func findDependencyCycles(workflow *Workflow) []Issue {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(workflow.Jobs))
	issues := make([]Issue, 0)

	var visit func(job *Job) bool

	visit = func(job *Job) bool {
		color[job.ID] = gray

		for _, need := range job.Needs {
			dependency, ok := workflow.JobByID(need)
			if !ok {
				continue
			}

			switch color[dependency.ID] {
			case gray:
				return true
			case white:
				if visit(dependency) {
					return true
				}
			}
		}

		color[job.ID] = black

		return false
	}

	for _, job := range workflow.Jobs {
		if color[job.ID] != white {
			continue
		}

		if visit(job) {
			issues = append(issues, Issue{
				Location: "jobs." + job.ID + ".needs",
				Message:  fmt.Sprintf("job %q is part of a dependency cycle", job.ID),
				Code:     IssueDependencyCycle,
			})
		}
	}

	return issues
}
