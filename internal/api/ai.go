package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tutorat/tutorat/internal/exercise"
)

// ChatMessage is one turn sent to the tutor. Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is the body of POST ai/generate-exercise/.
type GenerateRequest struct {
	Subject      string              `json:"subject"`
	Level        string              `json:"level"`
	Topic        string              `json:"topic"`
	Difficulty   exercise.Difficulty `json:"difficulty,omitempty"`
	ExerciseType exercise.Type       `json:"exercise_type,omitempty"`
	Language     string              `json:"language,omitempty"`
}

// Chat asks the server-side tutor for a reply to messages.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("chat: no messages")
	}
	body := struct {
		Messages []ChatMessage `json:"messages"`
	}{messages}

	var out struct {
		Content string `json:"content"`
		Error   string `json:"error"`
	}
	if err := c.doJSON(ctx, "chat", http.MethodPost, "ai/chat/", nil, body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("chat: %s", out.Error)
	}
	return out.Content, nil
}

// GenerateExercise asks the server for an exercise draft. The draft is not
// stored; send it to CreateExercise to keep it.
func (c *Client) GenerateExercise(ctx context.Context, req GenerateRequest) (*exercise.Exercise, error) {
	var raw map[string]json.RawMessage
	if err := c.doJSON(ctx, "generate exercise", http.MethodPost, "ai/generate-exercise/", nil, req, &raw); err != nil {
		return nil, err
	}
	if msg, ok := raw["error"]; ok {
		var s string
		_ = json.Unmarshal(msg, &s)
		return nil, fmt.Errorf("generate exercise: %s", strings.TrimSpace(s))
	}
	return DecodeDraft(raw, req.ExerciseType)
}

// DecodeDraft decodes a generated exercise object. Models often leave out
// the type, so fallback is applied when neither "exercise_type" nor "type"
// is present.
func DecodeDraft(raw map[string]json.RawMessage, fallback exercise.Type) (*exercise.Exercise, error) {
	if len(raw) == 0 {
		return nil, errors.New("generate exercise: empty draft")
	}
	_, hasType := raw["exercise_type"]
	_, hasDraftType := raw["type"]
	if !hasType && !hasDraftType && fallback != "" {
		b, err := json.Marshal(fallback)
		if err != nil {
			return nil, err
		}
		raw["exercise_type"] = b
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}
	var ex exercise.Exercise
	if err := json.Unmarshal(b, &ex); err != nil {
		return nil, fmt.Errorf("generate exercise: decode draft: %w", err)
	}
	ex.ID = 0
	ex.IsAIGenerated = true
	return &ex, nil
}

// Subject is a school subject from the lessons catalogue.
type Subject struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Order        int    `json:"order"`
	IsActive     bool   `json:"is_active"`
	ChapterCount int    `json:"chapter_count"`
}

// ListSubjects returns all subjects.
func (c *Client) ListSubjects(ctx context.Context) ([]Subject, error) {
	raw, err := c.getList(ctx, "list subjects", "lessons/subjects/", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[Subject](raw)
	if err != nil {
		return nil, fmt.Errorf("list subjects: decode: %w", err)
	}
	return items, nil
}

// Login exchanges credentials for a token. The token is not stored.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, "login", http.MethodPost, "users/login/", nil, body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login: response has no token")
	}
	return out.Token, nil
}
