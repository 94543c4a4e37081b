// Package quiz runs a multi-question quiz attempt.
package quiz

import (
	"encoding/json"
	"strconv"

	"github.com/tutorat/tutorat/internal/exercise"
)

// Quiz is a quiz as served by the API.
type Quiz struct {
	ID            int64                `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Subject       int64                `json:"subject"`
	SubjectName   string               `json:"subject_name"`
	Lesson        *int64               `json:"lesson,omitempty"`
	LessonTitle   string               `json:"lesson_title,omitempty"`
	Level         string               `json:"level"`
	TimeLimit     *int                 `json:"time_limit,omitempty"` // minutes
	PassingScore  int                  `json:"passing_score"`        // percent
	ExerciseCount int                  `json:"exercise_count,omitempty"`
	Exercises     []*exercise.Exercise `json:"exercises,omitempty"`
}

// UnmarshalJSON drops null entries from the exercise list.
func (q *Quiz) UnmarshalJSON(data []byte) error {
	type plain Quiz
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Exercises = compact(p.Exercises)
	*q = Quiz(p)
	return nil
}

func compact(exs []*exercise.Exercise) []*exercise.Exercise {
	out := exs[:0]
	for _, ex := range exs {
		if ex != nil {
			out = append(out, ex)
		}
	}
	return out
}

// Len is the number of questions.
func (q *Quiz) Len() int {
	return len(q.Exercises)
}

// Result is the server's verdict on a finished attempt.
type Result struct {
	Score      int     `json:"score"`
	TotalScore int     `json:"total_score"`
	Percentage float64 `json:"percentage"`
	IsPassed   bool    `json:"is_passed"`
	TimeSpent  int     `json:"time_spent"`
	Message    string  `json:"message,omitempty"`
}

// Submission is the body of a quiz submit request. Answers are keyed by
// exercise id; option answers are sent as raw indices.
type Submission struct {
	AttemptID int64          `json:"attempt_id"`
	Answers   map[string]any `json:"answers"`
	TimeSpent int            `json:"time_spent,omitempty"`
}

// encode converts a recorded answer for the quiz submit endpoint.
func encode(a exercise.Answer) any {
	switch v := a.(type) {
	case exercise.Option:
		return int(v)
	case exercise.Options:
		return []int(v)
	}
	return exercise.Encode(a)
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}
