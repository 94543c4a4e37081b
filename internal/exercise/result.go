package exercise

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// GradingResult is the server's verdict on a submission. It is stored as
// received.
type GradingResult struct {
	IsCorrect     bool            `json:"is_correct"`
	Score         int             `json:"score"`
	MaxScore      *int            `json:"max_score,omitempty"`
	Message       string          `json:"message,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
}

// Mark is how an option is highlighted.
type Mark int

const (
	MarkNeutral Mark = iota
	MarkSelected
	MarkSelectedCorrect
	MarkSelectedWrong
	MarkCorrect
)

// NormalizeIndex converts a correct-answer value to a 0-based option index.
// It accepts a letter ("A".."Z", any case), an integer, or a string of
// digits.
func NormalizeIndex(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, x >= 0
	case int64:
		return int(x), x >= 0
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		return int(n), err == nil && n >= 0
	case string:
		s := strings.TrimSpace(x)
		if len(s) == 1 {
			c := s[0]
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			if c >= 'A' && c <= 'Z' {
				return int(c - 'A'), true
			}
		}
		n, err := strconv.Atoi(s)
		return n, err == nil && n >= 0
	}
	return 0, false
}

// correctAt extracts the correct index for question q from a raw answer
// key. Arrays are indexed by question; a scalar applies to question 0.
func correctAt(raw json.RawMessage, q int) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if list, ok := v.([]any); ok {
		if q < 0 || q >= len(list) {
			return 0, false
		}
		return NormalizeIndex(list[q])
	}
	if q != 0 {
		return 0, false
	}
	return NormalizeIndex(v)
}
