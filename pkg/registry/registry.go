// Package registry holds the catalog of known trigger kinds and validates
// their configurations against JSON schemas.
package registry

import (
	"fmt"

	"github.com/pipeboard/pipeboard/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

// Issue codes specific to trigger configuration validation.
const (
	IssueUnknownTrigger models.IssueCode = "unknown_trigger"
	IssueBadConfig      models.IssueCode = "bad_trigger_config"
	IssueBadCron        models.IssueCode = "bad_cron"
)

// TriggerKind describes one supported trigger: its name and the JSON schema
// its configuration must satisfy.
type TriggerKind struct {
	Name        string
	Description string
	Schema      map[string]any
}

// Registry is the catalog of trigger kinds.
type Registry struct {
	kinds map[string]TriggerKind
	order []string
}

// NewRegistry creates a registry pre-populated with the built-in kinds.
func NewRegistry() *Registry {
	registry := &Registry{kinds: make(map[string]TriggerKind)}

	for _, kind := range builtinKinds() {
		registry.Register(kind)
	}

	return registry
}

// Register adds or replaces a trigger kind.
func (r *Registry) Register(kind TriggerKind) {
	if _, exists := r.kinds[kind.Name]; !exists {
		r.order = append(r.order, kind.Name)
	}

	r.kinds[kind.Name] = kind
}

// Kinds lists the registered trigger kinds in registration order.
func (r *Registry) Kinds() []TriggerKind {
	kinds := make([]TriggerKind, 0, len(r.order))

	for _, name := range r.order {
		kinds = append(kinds, r.kinds[name])
	}

	return kinds
}

// ValidateTriggers checks every trigger entry of a document against its
// kind's schema. Unknown kinds and schema violations become issues, never
// errors; an empty config is always acceptable (the empty marker).
func (r *Registry) ValidateTriggers(triggers []models.Trigger) []models.Issue {
	issues := make([]models.Issue, 0)

	for _, trigger := range triggers {
		location := "on." + trigger.Kind

		kind, known := r.kinds[trigger.Kind]
		if !known {
			issues = append(issues, models.Issue{
				Location: location,
				Message:  fmt.Sprintf("unknown trigger kind %q", trigger.Kind),
				Code:     IssueUnknownTrigger,
			})

			continue
		}

		if len(trigger.Config) == 0 {
			continue
		}

		issues = append(issues, validateConfig(location, kind, trigger.Config)...)

		if trigger.Kind == "schedule" {
			issues = append(issues, validateCrons(location, trigger.Config)...)
		}
	}

	return issues
}

func validateConfig(location string, kind TriggerKind, config map[string]any) []models.Issue {
	schemaLoader := gojsonschema.NewGoLoader(kind.Schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return []models.Issue{{
			Location: location,
			Message:  fmt.Sprintf("failed to validate configuration: %v", err),
			Code:     IssueBadConfig,
		}}
	}

	issues := make([]models.Issue, 0, len(result.Errors()))

	for _, violation := range result.Errors() {
		issues = append(issues, models.Issue{
			Location: location,
			Message:  violation.String(),
			Code:     IssueBadConfig,
		})
	}

	return issues
}

// validateCrons parses every cron expression of a schedule trigger with the
// standard five-field parser.
func validateCrons(location string, config map[string]any) []models.Issue {
	issues := make([]models.Issue, 0)

	expressions, ok := config["cron"]
	if !ok {
		return issues
	}

	check := func(expression string) {
		if _, err := cron.ParseStandard(expression); err != nil {
			issues = append(issues, models.Issue{
				Location: location + ".cron",
				Message:  fmt.Sprintf("invalid cron expression %q: %v", expression, err),
				Code:     IssueBadCron,
			})
		}
	}

	switch typed := expressions.(type) {
	case string:
		check(typed)
	case []any:
		for _, item := range typed {
			if expression, isString := item.(string); isString {
				check(expression)
			}
		}
	}

	return issues
}
