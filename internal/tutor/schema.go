package tutor

import "github.com/chemthink/chemthink/internal/llm"

// ProblemSchema defines the JSON schema for generated practice problems.
var ProblemSchema = &llm.Schema{
	Name:        "chem-problem",
	Description: "A single chemistry-math practice problem with hints and a worked solution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem_text": map[string]any{
				"type":        "string",
				"description": "The problem statement, opening with a real chemical phenomenon",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The answer: a number (with unit if any) or a short phrase",
			},
			"hint1": map[string]any{
				"type":        "string",
				"description": "A first hint for a struggling student",
			},
			"hint2": map[string]any{
				"type":        "string",
				"description": "A second, more direct hint",
			},
			"worked_solution": map[string]any{
				"type":        "string",
				"description": "The full step-by-step solution",
			},
			"chemistry_connection": map[string]any{
				"type":        "string",
				"description": "Why this matters in chemistry",
			},
		},
		"required":             []any{"problem_text", "correct_answer", "hint1", "hint2", "worked_solution", "chemistry_connection"},
		"additionalProperties": false,
	},
}

// GradeSchema defines the JSON schema for grading a student answer.
var GradeSchema = &llm.Schema{
	Name:        "chem-grade",
	Description: "The verdict on a student's answer with feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the student's answer is correct, allowing for formatting and unit differences",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "What the student got right or wrong. If wrong, explain why without giving the answer away",
			},
			"worked_example": map[string]any{
				"type":        "string",
				"description": "If wrong, a worked solution of a similar problem. Empty if correct",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "If wrong, a hint for the original problem. Empty if correct",
			},
		},
		"required":             []any{"correct", "feedback", "worked_example", "hint"},
		"additionalProperties": false,
	},
}
