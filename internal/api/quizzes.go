package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tutorat/tutorat/internal/quiz"
)

// QuizFilter narrows ListQuizzes.
type QuizFilter struct {
	Subject string
	Level   string
}

// QuizAttempt is a row of the user's server-side quiz history.
type QuizAttempt struct {
	ID          int64     `json:"id"`
	Quiz        int64     `json:"quiz"`
	QuizTitle   string    `json:"quiz_title"`
	Score       int       `json:"score"`
	TotalScore  int       `json:"total_score"`
	Percentage  float64   `json:"percentage"`
	IsPassed    bool      `json:"is_passed"`
	TimeSpent   int       `json:"time_spent"`
	Completed   bool      `json:"completed"`
	StartedAt   Timestamp `json:"started_at"`
	CompletedAt Timestamp `json:"completed_at"`
}

func quizPath(id int64, suffix string) string {
	return "exercises/quizzes/" + strconv.FormatInt(id, 10) + "/" + suffix
}

// GetQuiz fetches a quiz with its exercises.
func (c *Client) GetQuiz(ctx context.Context, id int64) (*quiz.Quiz, error) {
	var q quiz.Quiz
	if err := c.doJSON(ctx, "get quiz", http.MethodGet, quizPath(id, ""), nil, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuizzes returns the quiz catalogue without exercises.
func (c *Client) ListQuizzes(ctx context.Context, f QuizFilter) ([]*quiz.Quiz, error) {
	q := url.Values{}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	raw, err := c.getList(ctx, "list quizzes", "exercises/quizzes/", q)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[*quiz.Quiz](raw)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: decode: %w", err)
	}
	return items, nil
}

// StartQuiz opens an attempt and returns its id. The session treats a
// non-positive id as a failed start.
func (c *Client) StartQuiz(ctx context.Context, id int64) (int64, error) {
	var out struct {
		AttemptID int64 `json:"attempt_id"`
	}
	if err := c.doJSON(ctx, "start quiz", http.MethodPost, quizPath(id, "start/"), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.AttemptID, nil
}

// SubmitQuiz sends all answers of an attempt.
func (c *Client) SubmitQuiz(ctx context.Context, id int64, sub quiz.Submission) (*quiz.Result, error) {
	var res quiz.Result
	if err := c.doJSON(ctx, "submit quiz", http.MethodPost, quizPath(id, "submit/"), nil, sub, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListMyQuizAttempts returns the user's quiz attempts.
func (c *Client) ListMyQuizAttempts(ctx context.Context) ([]QuizAttempt, error) {
	raw, err := c.getList(ctx, "list quiz attempts", "exercises/quizzes/my_attempts/", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[QuizAttempt](raw)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: decode: %w", err)
	}
	return items, nil
}
