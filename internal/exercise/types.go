// Package exercise models a single exercise and the state machine for one
// attempt at it.
package exercise

import (
	"encoding/json"
	"fmt"
)

// Type identifies the exercise format.
type Type string

const (
	TypeQCM     Type = "qcm"
	TypeClassic Type = "classic"
)

// Known reports whether the client can run exercises of this type.
func (t Type) Known() bool {
	return t == TypeQCM || t == TypeClassic
}

// Difficulty is the server-side difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Label returns the French label shown by the platform.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Facile"
	case DifficultyMedium:
		return "Moyen"
	case DifficultyHard:
		return "Difficile"
	}
	return string(d)
}

// Exercise is an exercise as served by the API. Content is decoded into a
// typed variant according to the exercise type.
type Exercise struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Type           Type            `json:"exercise_type"`
	Difficulty     Difficulty      `json:"difficulty"`
	Level          string          `json:"level"`
	Subject        int64           `json:"subject"`
	SubjectName    string          `json:"subject_name"`
	Lesson         *int64          `json:"lesson,omitempty"`
	LessonTitle    string          `json:"lesson_title,omitempty"`
	Points         int             `json:"points"`
	TimeLimit      *int            `json:"time_limit,omitempty"` // seconds
	Content        Content         `json:"-"`
	Hints          []string        `json:"hints"`
	Explanation    string          `json:"explanation"`
	CorrectAnswers json.RawMessage `json:"correct_answers,omitempty"`
	IsAIGenerated  bool            `json:"is_ai_generated"`
	AttemptsCount  int             `json:"attempts_count,omitempty"`
	BestScore      int             `json:"best_score,omitempty"`
}

type exerciseJSON struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ExerciseType   Type            `json:"exercise_type"`
	DraftType      Type            `json:"type"`
	Difficulty     Difficulty      `json:"difficulty"`
	Level          string          `json:"level"`
	Subject        json.RawMessage `json:"subject"`
	SubjectName    string          `json:"subject_name"`
	Lesson         *int64          `json:"lesson"`
	LessonTitle    string          `json:"lesson_title"`
	Points         int             `json:"points"`
	TimeLimit      *int            `json:"time_limit"`
	Content        json.RawMessage `json:"content"`
	Hints          []string        `json:"hints"`
	Explanation    string          `json:"explanation"`
	CorrectAnswers json.RawMessage `json:"correct_answers"`
	IsAIGenerated  bool            `json:"is_ai_generated"`
	AttemptsCount  int             `json:"attempts_count"`
	BestScore      int             `json:"best_score"`
}

// UnmarshalJSON decodes an exercise and resolves its content variant. The
// type is read from "exercise_type", falling back to "type" as used by
// generated drafts.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	var raw exerciseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	typ := raw.ExerciseType
	if typ == "" {
		typ = raw.DraftType
	}

	content, err := DecodeContent(typ, raw.Content)
	if err != nil {
		return fmt.Errorf("exercise %d: %w", raw.ID, err)
	}

	*e = Exercise{
		ID:             raw.ID,
		Title:          raw.Title,
		Description:    raw.Description,
		Type:           typ,
		Difficulty:     raw.Difficulty,
		Level:          raw.Level,
		SubjectName:    raw.SubjectName,
		Lesson:         raw.Lesson,
		LessonTitle:    raw.LessonTitle,
		Points:         raw.Points,
		TimeLimit:      raw.TimeLimit,
		Content:        content,
		Hints:          raw.Hints,
		Explanation:    raw.Explanation,
		CorrectAnswers: raw.CorrectAnswers,
		IsAIGenerated:  raw.IsAIGenerated,
		AttemptsCount:  raw.AttemptsCount,
		BestScore:      raw.BestScore,
	}

	// Subject is a numeric id on stored exercises and a name on drafts.
	if len(raw.Subject) > 0 {
		var id int64
		if err := json.Unmarshal(raw.Subject, &id); err == nil {
			e.Subject = id
		} else {
			var name string
			if err := json.Unmarshal(raw.Subject, &name); err == nil && e.SubjectName == "" {
				e.SubjectName = name
			}
		}
	}
	return nil
}

// MarshalJSON encodes the exercise in the create-exercise payload shape.
func (e Exercise) MarshalJSON() ([]byte, error) {
	type alias Exercise
	var content json.RawMessage
	if e.Content != nil {
		b, err := json.Marshal(e.Content)
		if err != nil {
			return nil, err
		}
		content = b
	}
	return json.Marshal(struct {
		alias
		Content json.RawMessage `json:"content,omitempty"`
	}{alias: alias(e), Content: content})
}

// QuestionCount is the number of answerable questions: the sub-question
// count for multi-question content, otherwise 1.
func (e *Exercise) QuestionCount() int {
	if m, ok := e.Content.(MultiQCM); ok {
		return len(m.Questions)
	}
	return 1
}

// Supported reports whether the client can present and submit e.
func (e *Exercise) Supported() bool {
	if e == nil {
		return false
	}
	_, unsupported := e.Content.(Unsupported)
	return e.Content != nil && !unsupported
}
