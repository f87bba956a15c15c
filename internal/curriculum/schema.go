package curriculum

import "github.com/compasslearn/compass/internal/llm"

// OutlineSchema defines the JSON schema for curriculum outline responses,
// used for both fresh journeys and deep-study sub-graphs.
var OutlineSchema = &llm.Schema{
	Name:        "curriculum-outline",
	Description: "A curriculum of learning units forming a dependency graph, with a glossary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"units": map[string]any{
				"type":        "array",
				"description": "Learning units ordered from foundations to advanced",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short kebab-case identifier, unique within this curriculum",
						},
						"title": map[string]any{
							"type":        "string",
							"description": "Concise unit name shown to the learner",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "2-3 sentences on what this unit covers and why it matters",
						},
						"dependencies": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "ids of units that must be completed first. Empty for starting units. Must reference ids in this curriculum only, and must not form a cycle.",
						},
					},
					"required":             []any{"id", "title", "description", "dependencies"},
					"additionalProperties": false,
				},
			},
			"glossary": map[string]any{
				"type":        "array",
				"description": "Key terms the learner will meet in this curriculum",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"term": map[string]any{
							"type": "string",
						},
						"definition": map[string]any{
							"type":        "string",
							"description": "One-sentence plain-language definition",
						},
					},
					"required":             []any{"term", "definition"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"units", "glossary"},
		"additionalProperties": false,
	},
}

// FollowOnSchema defines the JSON schema for follow-on unit suggestions.
var FollowOnSchema = &llm.Schema{
	Name:        "follow-on-units",
	Description: "Follow-on learning units extending a completed curriculum branch",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"suggestions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Concise unit name shown to the learner",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "2-3 sentences on what this unit covers",
						},
					},
					"required":             []any{"title", "description"},
					"additionalProperties": false,
				},
				"description": "New units that naturally follow the completed one. May be empty if the branch is genuinely exhausted.",
			},
		},
		"required":             []any{"suggestions"},
		"additionalProperties": false,
	},
}
