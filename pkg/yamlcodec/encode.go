package yamlcodec

import (
	"fmt"

	"github.com/pipeboard/pipeboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// Marshal serializes a document to canonical YAML: stable top-level field
// order (name, run-name, on, env, permissions, defaults, concurrency, jobs),
// triggers with no configuration written as empty mappings, `needs` written
// as a scalar when there is exactly one, and a scalar `runs-on` for a single
// runner label.
func Marshal(workflow *models.Workflow) ([]byte, error) {
	root := mappingNode()

	if workflow.Name != "" {
		appendScalarPair(root, "name", workflow.Name)
	}

	if workflow.RunName != "" {
		appendScalarPair(root, "run-name", workflow.RunName)
	}

	triggers, err := encodeTriggers(workflow.Triggers)
	if err != nil {
		return nil, err
	}

	appendPair(root, "on", triggers)

	if err := appendValuePair(root, "env", workflow.Env, len(workflow.Env) > 0); err != nil {
		return nil, err
	}

	if err := appendValuePair(root, "permissions", workflow.Permissions, len(workflow.Permissions) > 0); err != nil {
		return nil, err
	}

	if err := appendValuePair(root, "defaults", workflow.Defaults, len(workflow.Defaults) > 0); err != nil {
		return nil, err
	}

	if err := appendValuePair(root, "concurrency", workflow.Concurrency, len(workflow.Concurrency) > 0); err != nil {
		return nil, err
	}

	jobs, err := encodeJobs(workflow.Jobs)
	if err != nil {
		return nil, err
	}

	appendPair(root, "jobs", jobs)

	return yaml.Marshal(root)
}

func encodeTriggers(triggers []models.Trigger) (*yaml.Node, error) {
	node := mappingNode()

	for _, trigger := range triggers {
		if len(trigger.Config) == 0 {
			// Null and absent configs are normalized to the empty mapping.
			appendPair(node, trigger.Kind, mappingNode())

			continue
		}

		config, err := encodeValue(trigger.Config)
		if err != nil {
			return nil, fmt.Errorf("trigger %s: %w", trigger.Kind, err)
		}

		appendPair(node, trigger.Kind, config)
	}

	return node, nil
}

func encodeJobs(jobs []*models.Job) (*yaml.Node, error) {
	node := mappingNode()

	for _, job := range jobs {
		encoded, err := encodeJob(job)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.ID, err)
		}

		appendPair(node, job.ID, encoded)
	}

	return node, nil
}

func encodeJob(job *models.Job) (*yaml.Node, error) {
	node := mappingNode()

	if job.Name != "" {
		appendScalarPair(node, "name", job.Name)
	}

	runsOn, err := encodeScalarOrList(job.RunsOn)
	if err != nil {
		return nil, err
	}

	appendPair(node, "runs-on", runsOn)

	if len(job.Needs) > 0 {
		needs, err := encodeScalarOrList(job.Needs)
		if err != nil {
			return nil, err
		}

		appendPair(node, "needs", needs)
	}

	if job.TimeoutMinutes != 0 {
		if err := appendValuePair(node, "timeout-minutes", job.TimeoutMinutes, true); err != nil {
			return nil, err
		}
	}

	if err := appendValuePair(node, "strategy", job.Strategy, len(job.Strategy) > 0); err != nil {
		return nil, err
	}

	if err := appendValuePair(node, "env", job.Env, len(job.Env) > 0); err != nil {
		return nil, err
	}

	if err := appendValuePair(node, "permissions", job.Permissions, len(job.Permissions) > 0); err != nil {
		return nil, err
	}

	steps := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

	for i := range job.Steps {
		encoded, err := encodeStep(&job.Steps[i])
		if err != nil {
			return nil, err
		}

		steps.Content = append(steps.Content, encoded)
	}

	appendPair(node, "steps", steps)

	return node, nil
}

func encodeStep(step *models.Step) (*yaml.Node, error) {
	node := mappingNode()

	if step.Name != "" {
		appendScalarPair(node, "name", step.Name)
	}

	if step.If != "" {
		appendScalarPair(node, "if", step.If)
	}

	if step.Uses != "" {
		appendScalarPair(node, "uses", step.Uses)

		if err := appendValuePair(node, "with", step.With, len(step.With) > 0); err != nil {
			return nil, err
		}
	}

	if step.Run != "" {
		appendScalarPair(node, "run", step.Run)

		if step.Shell != "" {
			appendScalarPair(node, "shell", step.Shell)
		}

		if step.WorkingDirectory != "" {
			appendScalarPair(node, "working-directory", step.WorkingDirectory)
		}
	}

	if step.ContinueOnError {
		if err := appendValuePair(node, "continue-on-error", true, true); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}

func appendScalarPair(mapping *yaml.Node, key, value string) {
	appendPair(mapping, key, scalarNode(value))
}

func appendValuePair(mapping *yaml.Node, key string, value any, present bool) error {
	if !present {
		return nil
	}

	encoded, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	appendPair(mapping, key, encoded)

	return nil
}

func encodeValue(value any) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(value); err != nil {
		return nil, err
	}

	return node, nil
}

func encodeScalarOrList(values []string) (*yaml.Node, error) {
	if len(values) == 1 {
		return scalarNode(values[0]), nil
	}

	return encodeValue(values)
}
