package bankgen

import "github.com/abhisek/examly/internal/llm"

// BatchSchema defines the JSON schema of one generation response.
var BatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of multiple-choice exam questions with answers and explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_text": map[string]any{
							"type":        "string",
							"description": "The question prompt, self-contained, in plain text",
						},
						"choices": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    ChoiceCount,
							"maxItems":    ChoiceCount,
							"description": "Exactly 4 distinct options",
						},
						"answer_index": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     ChoiceCount - 1,
							"description": "Zero-based index of the correct option",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "Self-assessed difficulty from 1 (easy) to 5 (hard)",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Short worked solution explaining why the answer is correct",
						},
					},
					"required":             []any{"question_text", "choices", "answer_index", "difficulty", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
