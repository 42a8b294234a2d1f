package canvas

import (
	"sort"

	"github.com/pipeboard/pipeboard/pkg/models"
)

// MapGraph rebuilds a workflow document from the node and edge sets. It is
// pure and total: a job node with no steps yields an empty step list (invalid
// per the document rules, but flagged by validation, not here). Document-level
// metadata (name, env, ...) is not represented in the graph; the caller is
// responsible for carrying it over (see pkg/editor).
func MapGraph(graph *models.Graph) *models.Workflow {
	workflow := &models.Workflow{
		Triggers: recoverTriggers(graph),
		Jobs:     make([]*models.Job, 0),
	}

	steps := stepsByJob(graph)

	for _, node := range graph.Nodes {
		if node.Kind != models.NodeKindJob {
			continue
		}

		job := recoverJob(graph, node, steps)
		if job == nil {
			continue
		}

		workflow.Jobs = append(workflow.Jobs, job)
	}

	return workflow
}

// recoverTriggers reads the single trigger node's stored payload. A missing
// node or empty payload falls back to a bare push trigger; this is the
// defined default, not an error.
func recoverTriggers(graph *models.Graph) []models.Trigger {
	for _, node := range graph.Nodes {
		if node.Kind != models.NodeKindTrigger {
			continue
		}

		if data, ok := node.Data.(models.TriggerData); ok && len(data.Triggers) > 0 {
			triggers := make([]models.Trigger, len(data.Triggers))
			copy(triggers, data.Triggers)

			return triggers
		}

		break
	}

	return []models.Trigger{{Kind: "push"}}
}

type ownedStep struct {
	index int
	step  *models.Step
}

// stepsByJob groups step nodes by their owning job id. Structural ownership
// (StepData.JobID and Index) is authoritative; the node-id convention is only
// a fallback for nodes produced by tools that did not populate the payload.
func stepsByJob(graph *models.Graph) map[string][]ownedStep {
	owned := make(map[string][]ownedStep)

	for _, node := range graph.Nodes {
		if node.Kind != models.NodeKindStep {
			continue
		}

		data, ok := node.Data.(models.StepData)
		if !ok || data.Step == nil {
			continue
		}

		jobID := data.JobID
		index := data.Index

		if jobID == "" {
			jobNodeID, parsedIndex, parsed := models.ParseStepNodeID(node.ID)
			if !parsed {
				continue
			}

			parsedJobID, jobOK := models.ParseJobNodeID(jobNodeID)
			if !jobOK {
				continue
			}

			jobID = parsedJobID
			index = parsedIndex
		}

		owned[jobID] = append(owned[jobID], ownedStep{index: index, step: data.Step})
	}

	for jobID := range owned {
		sort.SliceStable(owned[jobID], func(i, j int) bool {
			return owned[jobID][i].index < owned[jobID][j].index
		})
	}

	return owned
}

func recoverJob(graph *models.Graph, node *models.Node, steps map[string][]ownedStep) *models.Job {
	data, hasData := node.Data.(models.JobData)

	jobID := ""
	if hasData && data.Job != nil {
		jobID = data.Job.ID
	}

	if jobID == "" {
		parsed, ok := models.ParseJobNodeID(node.ID)
		if !ok {
			return nil
		}

		jobID = parsed
	}

	// Start from the stored payload so fields the graph does not represent
	// (timeout, strategy, env, permissions) survive the round trip.
	var job *models.Job
	if hasData && data.Job != nil {
		job = data.Job.Clone()
	} else {
		job = &models.Job{}
	}

	job.ID = jobID

	if hasData && data.Label != "" && data.Label != jobID {
		job.Name = data.Label
	}

	job.Steps = make([]models.Step, 0, len(steps[jobID]))
	for _, owned := range steps[jobID] {
		job.Steps = append(job.Steps, *owned.step.Clone())
	}

	job.Needs = recoverNeeds(graph, node.ID)

	return job
}

// recoverNeeds scans dependency edges targeting the job node. Edges from the
// trigger node are never part of needs.
func recoverNeeds(graph *models.Graph, jobNodeID string) []string {
	var needs []string

	for _, edge := range graph.Edges {
		if edge.Kind != models.EdgeKindDependency || edge.Target != jobNodeID {
			continue
		}

		source, ok := graph.NodeByID(edge.Source)
		if !ok || source.Kind != models.NodeKindJob {
			continue
		}

		if need, parsed := jobIDOfNode(source); parsed {
			needs = append(needs, need)
		}
	}

	return needs
}

func jobIDOfNode(node *models.Node) (string, bool) {
	if data, ok := node.Data.(models.JobData); ok && data.Job != nil && data.Job.ID != "" {
		return data.Job.ID, true
	}

	return models.ParseJobNodeID(node.ID)
}
