package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jinzhu/copier"

	"github.com/tutorat/tutorat/internal/exercise"
)

// ExerciseFilter narrows ListExercises. Zero fields are not sent.
type ExerciseFilter struct {
	Subject    string
	Level      string
	Difficulty exercise.Difficulty
	Lesson     int64
}

func (f ExerciseFilter) values() url.Values {
	q := url.Values{}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.Difficulty != "" {
		q.Set("difficulty", string(f.Difficulty))
	}
	if f.Lesson > 0 {
		q.Set("lesson", strconv.FormatInt(f.Lesson, 10))
	}
	return q
}

// ExerciseAttempt is a row of the user's server-side attempt history.
type ExerciseAttempt struct {
	ID            int64           `json:"id"`
	Exercise      int64           `json:"exercise"`
	ExerciseTitle string          `json:"exercise_title"`
	Answer        json.RawMessage `json:"answer"`
	IsCorrect     bool            `json:"is_correct"`
	Score         int             `json:"score"`
	TimeSpent     int             `json:"time_spent"`
	HintsUsed     int             `json:"hints_used"`
	AttemptNumber int             `json:"attempt_number"`
	CreatedAt     Timestamp       `json:"created_at"`
}

// CreateExerciseRequest is the body of POST exercises/.
type CreateExerciseRequest struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	ExerciseType   exercise.Type       `json:"exercise_type"`
	Difficulty     exercise.Difficulty `json:"difficulty"`
	Level          string              `json:"level"`
	Subject        int64               `json:"subject,omitempty"`
	Lesson         *int64              `json:"lesson,omitempty"`
	ContentJSON    json.RawMessage     `json:"content"`
	CorrectAnswers json.RawMessage     `json:"correct_answers,omitempty"`
	Explanation    string              `json:"explanation"`
	Hints          []string            `json:"hints"`
	Points         int                 `json:"points"`
	TimeLimit      *int                `json:"time_limit,omitempty"`
	IsAIGenerated  bool                `json:"is_ai_generated"`
}

// NewCreateExerciseRequest builds the create payload from ex. Content is
// re-encoded from its typed variant.
func NewCreateExerciseRequest(ex *exercise.Exercise) (CreateExerciseRequest, error) {
	var req CreateExerciseRequest
	if err := copier.Copy(&req, ex); err != nil {
		return req, fmt.Errorf("copy exercise: %w", err)
	}
	req.ExerciseType = ex.Type
	if ex.Content != nil {
		b, err := json.Marshal(ex.Content)
		if err != nil {
			return req, fmt.Errorf("encode content: %w", err)
		}
		req.ContentJSON = b
	}
	if req.Hints == nil {
		req.Hints = []string{}
	}
	return req, nil
}

func exercisePath(id int64, suffix string) string {
	return "exercises/" + strconv.FormatInt(id, 10) + "/" + suffix
}

// GetExercise fetches one exercise with its content. A missing exercise
// yields an error matching ErrNotFound.
func (c *Client) GetExercise(ctx context.Context, id int64) (*exercise.Exercise, error) {
	var ex exercise.Exercise
	if err := c.doJSON(ctx, "get exercise", http.MethodGet, exercisePath(id, ""), nil, nil, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

// ListExercises returns the exercise catalogue. List rows carry no content.
func (c *Client) ListExercises(ctx context.Context, f ExerciseFilter) ([]*exercise.Exercise, error) {
	raw, err := c.getList(ctx, "list exercises", "exercises/", f.values())
	if err != nil {
		return nil, err
	}
	items, err := decodeList[*exercise.Exercise](raw)
	if err != nil {
		return nil, fmt.Errorf("list exercises: decode: %w", err)
	}
	return items, nil
}

// SubmitExercise sends an answer for grading.
func (c *Client) SubmitExercise(ctx context.Context, id int64, sub exercise.Submission) (*exercise.GradingResult, error) {
	var res exercise.GradingResult
	if err := c.doJSON(ctx, "submit exercise", http.MethodPost, exercisePath(id, "submit/"), nil, sub, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateExercise stores a new exercise and returns it as the server saw it.
func (c *Client) CreateExercise(ctx context.Context, req CreateExerciseRequest) (*exercise.Exercise, error) {
	var out json.RawMessage
	if err := c.doJSON(ctx, "create exercise", http.MethodPost, "exercises/", nil, req, &out); err != nil {
		return nil, err
	}
	var ex exercise.Exercise
	if err := json.Unmarshal(out, &ex); err != nil {
		return nil, fmt.Errorf("create exercise: decode: %w", err)
	}
	if ex.ID <= 0 {
		return nil, fmt.Errorf("create exercise: response has no id")
	}
	if ex.Type == "" {
		// Older backends omit the type from the create response.
		ex.Type = req.ExerciseType
		if content, err := exercise.DecodeContent(ex.Type, req.ContentJSON); err == nil {
			ex.Content = content
		}
	}
	return &ex, nil
}

// ListMyAttempts returns the user's exercise attempts, newest first.
func (c *Client) ListMyAttempts(ctx context.Context) ([]ExerciseAttempt, error) {
	raw, err := c.getList(ctx, "list attempts", "exercises/my_attempts/", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[ExerciseAttempt](raw)
	if err != nil {
		return nil, fmt.Errorf("list attempts: decode: %w", err)
	}
	return items, nil
}
