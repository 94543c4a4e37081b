package exercise

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Content is the type-specific body of an exercise. The variants are
// SingleQCM, MultiQCM, Classic and Unsupported.
type Content interface {
	isContent()
}

// SingleQCM is a multiple-choice exercise with one question.
type SingleQCM struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// MultiQCM is a multiple-choice exercise with several sub-questions.
type MultiQCM struct {
	Questions []QCMQuestion `json:"questions"`
}

// QCMQuestion is one sub-question of a MultiQCM.
type QCMQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`

	// CorrectOption is present on generated drafts only.
	CorrectOption *int `json:"correct_option,omitempty"`
}

// Classic is a worksheet-style exercise; answers are self-checked against
// the model answer.
type Classic struct {
	Text      string   `json:"text,omitempty"`
	Questions []string `json:"questions,omitempty"`
}

// Unsupported holds content of an exercise type the client cannot run.
type Unsupported struct {
	Type Type
	Raw  json.RawMessage
}

func (SingleQCM) isContent()   {}
func (MultiQCM) isContent()    {}
func (Classic) isContent()     {}
func (Unsupported) isContent() {}

// MarshalJSON returns the original payload.
func (u Unsupported) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// UnmarshalJSON accepts the question under "question" or "text".
func (q *QCMQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question      string   `json:"question"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectOption *int     `json:"correct_option"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Question = raw.Question
	if q.Question == "" {
		q.Question = raw.Text
	}
	q.Options = raw.Options
	q.CorrectOption = raw.CorrectOption
	return nil
}

// DecodeContent resolves raw content for an exercise of type typ. Empty
// content on a known type (as in list responses) yields nil.
func DecodeContent(typ Type, raw json.RawMessage) (Content, error) {
	if !typ.Known() {
		return Unsupported{Type: typ, Raw: raw}, nil
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch typ {
	case TypeQCM:
		return decodeQCM(raw)
	default:
		return decodeClassic(raw)
	}
}

func decodeQCM(raw json.RawMessage) (Content, error) {
	var shape struct {
		Questions json.RawMessage `json:"questions"`
		Question  string          `json:"question"`
		Text      string          `json:"text"`
		Options   []string        `json:"options"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("decode qcm content: %w", err)
	}

	if isObjectArray(shape.Questions) {
		var m MultiQCM
		if err := json.Unmarshal(shape.Questions, &m.Questions); err != nil {
			return nil, fmt.Errorf("decode qcm questions: %w", err)
		}
		return m, nil
	}

	q := SingleQCM{Question: shape.Question, Options: shape.Options}
	if q.Question == "" {
		q.Question = shape.Text
	}
	return q, nil
}

func decodeClassic(raw json.RawMessage) (Content, error) {
	var shape struct {
		Text      string            `json:"text"`
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("decode classic content: %w", err)
	}

	c := Classic{Text: shape.Text}
	for _, item := range shape.Questions {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			c.Questions = append(c.Questions, s)
			continue
		}
		var q QCMQuestion
		if err := json.Unmarshal(item, &q); err == nil && q.Question != "" {
			c.Questions = append(c.Questions, q.Question)
			continue
		}
		c.Questions = append(c.Questions, string(item))
	}
	return c, nil
}

// isObjectArray reports whether raw is a non-empty JSON array of objects.
func isObjectArray(raw json.RawMessage) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return false
	}
	for _, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) == 0 || it[0] != '{' {
			return false
		}
	}
	return true
}
