// Package yamlcodec converts workflow documents to and from their textual
// YAML form. It is the boundary adapter: the editor core only ever sees the
// in-memory document schema.
package yamlcodec

import (
	"errors"
	"fmt"

	"github.com/pipeboard/pipeboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrParse wraps every malformed-input failure so callers can treat parse
// errors as one class.
var ErrParse = errors.New("failed to parse workflow")

// IsParseError reports whether an error came from malformed workflow text.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

type jobYAML struct {
	Name           string            `yaml:"name"`
	RunsOn         any               `yaml:"runs-on"`
	Needs          any               `yaml:"needs"`
	Steps          []stepYAML        `yaml:"steps"`
	TimeoutMinutes int               `yaml:"timeout-minutes"`
	Strategy       map[string]any    `yaml:"strategy"`
	Env            map[string]string `yaml:"env"`
	Permissions    map[string]any    `yaml:"permissions"`
}

type stepYAML struct {
	Name             string         `yaml:"name"`
	Uses             string         `yaml:"uses"`
	With             map[string]any `yaml:"with"`
	Run              string         `yaml:"run"`
	Shell            string         `yaml:"shell"`
	WorkingDirectory string         `yaml:"working-directory"`
	If               string         `yaml:"if"`
	ContinueOnError  bool           `yaml:"continue-on-error"`
}

// Unmarshal parses workflow YAML into a document. Job and trigger order is
// preserved as written; `needs` and `runs-on` accept a scalar or a sequence.
// The result may still be structurally invalid; run models.ValidateWorkflow
// to find out.
func Unmarshal(data []byte) (*models.Workflow, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}

	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: workflow must be a mapping", ErrParse)
	}

	workflow := &models.Workflow{}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		var err error

		switch key {
		case "name":
			err = value.Decode(&workflow.Name)
		case "run-name":
			err = value.Decode(&workflow.RunName)
		case "on":
			workflow.Triggers, err = decodeTriggers(value)
		case "env":
			err = value.Decode(&workflow.Env)
		case "permissions":
			err = value.Decode(&workflow.Permissions)
		case "defaults":
			err = value.Decode(&workflow.Defaults)
		case "concurrency":
			err = value.Decode(&workflow.Concurrency)
		case "jobs":
			workflow.Jobs, err = decodeJobs(value)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, key, err)
		}
	}

	return workflow, nil
}

// decodeTriggers accepts the three YAML shapes of `on`: a single kind scalar,
// a sequence of kinds, or a mapping from kind to configuration (where a null
// configuration is the empty marker).
func decodeTriggers(node *yaml.Node) ([]models.Trigger, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var kind string
		if err := node.Decode(&kind); err != nil {
			return nil, err
		}

		return []models.Trigger{{Kind: kind}}, nil
	case yaml.SequenceNode:
		triggers := make([]models.Trigger, 0, len(node.Content))

		for _, item := range node.Content {
			var kind string
			if err := item.Decode(&kind); err != nil {
				return nil, err
			}

			triggers = append(triggers, models.Trigger{Kind: kind})
		}

		return triggers, nil
	case yaml.MappingNode:
		triggers := make([]models.Trigger, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			trigger := models.Trigger{Kind: node.Content[i].Value}

			// Null and empty configurations are both the empty marker and
			// stay nil so the two spellings compare equal.
			value := node.Content[i+1]
			if value.Kind == yaml.MappingNode && len(value.Content) > 0 {
				if err := value.Decode(&trigger.Config); err != nil {
					return nil, err
				}
			}

			triggers = append(triggers, trigger)
		}

		return triggers, nil
	default:
		return nil, fmt.Errorf("unsupported trigger shape on line %d", node.Line)
	}
}

func decodeJobs(node *yaml.Node) ([]*models.Job, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("jobs must be a mapping, got line %d", node.Line)
	}

	jobs := make([]*models.Job, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		jobID := node.Content[i].Value

		var decoded jobYAML
		if err := node.Content[i+1].Decode(&decoded); err != nil {
			return nil, fmt.Errorf("job %s: %v", jobID, err)
		}

		job := &models.Job{
			ID:             jobID,
			Name:           decoded.Name,
			RunsOn:         stringOrList(decoded.RunsOn),
			Needs:          stringOrList(decoded.Needs),
			TimeoutMinutes: decoded.TimeoutMinutes,
			Strategy:       decoded.Strategy,
			Env:            decoded.Env,
			Permissions:    decoded.Permissions,
		}

		for _, step := range decoded.Steps {
			job.Steps = append(job.Steps, models.Step{
				Name:             step.Name,
				Uses:             step.Uses,
				With:             step.With,
				Run:              step.Run,
				Shell:            step.Shell,
				WorkingDirectory: step.WorkingDirectory,
				If:               step.If,
				ContinueOnError:  step.ContinueOnError,
			})
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func stringOrList(value any) []string {
	switch typed := value.(type) {
	case string:
		return []string{typed}
	case []any:
		list := make([]string, 0, len(typed))

		for _, item := range typed {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}

		return list
	default:
		return nil
	}
}
