package registry

func builtinKinds() []TriggerKind {
	branchFilter := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}

	return []TriggerKind{
		{
			Name:        "push",
			Description: "Runs when commits are pushed",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"branches":        branchFilter,
					"branches-ignore": branchFilter,
					"tags":            branchFilter,
					"paths":           branchFilter,
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        "pull_request",
			Description: "Runs on pull request activity",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"branches": branchFilter,
					"paths":    branchFilter,
					"types": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        "schedule",
			Description: "Runs on a cron schedule",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cron": map[string]any{
						"oneOf": []any{
							map[string]any{"type": "string"},
							map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
				},
				"required":             []any{"cron"},
				"additionalProperties": false,
			},
		},
		{
			Name:        "workflow_dispatch",
			Description: "Runs when triggered manually",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"inputs": map[string]any{"type": "object"},
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        "release",
			Description: "Runs on release activity",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"types": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
	}
}
