package tutor

import (
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/llm"
)

func draftProperties(content, answers map[string]any) map[string]any {
	return map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"type":        map[string]any{"type": "string", "enum": []any{"qcm", "classic"}},
		"difficulty":  map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
		"content":     content,
		"correct_answers": map[string]any{
			"type":  "array",
			"items": answers,
		},
		"explanation": map[string]any{"type": "string"},
		"hints": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"points": map[string]any{"type": "integer", "minimum": 1},
	}
}

var draftRequired = []any{"title", "description", "type", "difficulty", "content", "correct_answers", "explanation", "hints", "points"}

// QCMDraftSchema is the shape of a generated multiple-choice exercise.
var QCMDraftSchema = &llm.Schema{
	Name:        "qcm-exercise-draft",
	Description: "A multiple-choice school exercise with one or more questions",
	Definition: map[string]any{
		"type": "object",
		"properties": draftProperties(
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"question": map[string]any{"type": "string"},
								"options": map[string]any{
									"type":     "array",
									"minItems": 2,
									"items":    map[string]any{"type": "string"},
								},
								"correct_option": map[string]any{"type": "integer", "minimum": 0},
							},
							"required":             []any{"question", "options", "correct_option"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []any{"questions"},
				"additionalProperties": false,
			},
			map[string]any{"type": "integer", "minimum": 0},
		),
		"required":             draftRequired,
		"additionalProperties": false,
	},
}

// ClassicDraftSchema is the shape of a generated worksheet exercise.
var ClassicDraftSchema = &llm.Schema{
	Name:        "classic-exercise-draft",
	Description: "A worksheet exercise with a statement, sub-questions and model answers",
	Definition: map[string]any{
		"type": "object",
		"properties": draftProperties(
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
					"questions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]any{"type": "string"},
					},
				},
				"required":             []any{"text", "questions"},
				"additionalProperties": false,
			},
			map[string]any{"type": "string"},
		),
		"required":             draftRequired,
		"additionalProperties": false,
	},
}

func draftSchema(t exercise.Type) *llm.Schema {
	if t == exercise.TypeClassic {
		return ClassicDraftSchema
	}
	return QCMDraftSchema
}
