// Package tutor is the AI side of the client: a chat tutor and an
// exercise generator, backed either by the platform's API or by a local
// LLM provider.
package tutor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tutorat/tutorat/internal/exercise"
)

// Role is the author of a chat message. System messages are local notes
// (errors) and are never sent to a backend.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
	At      time.Time
}

// Backend answers chat turns and drafts exercises.
type Backend interface {
	Chat(ctx context.Context, history []Message) (string, error)
	GenerateExercise(ctx context.Context, p GenerateParams) (*Draft, error)
}

// ErrMissingParams is returned when subject, level or topic is blank.
var ErrMissingParams = errors.New("subject, level and topic are required")

// GenerateParams describes the exercise to draft.
type GenerateParams struct {
	Subject    string
	Level      string
	Topic      string
	Difficulty exercise.Difficulty
	Type       exercise.Type
	Language   string // "fr" or "en"
}

// WithDefaults fills in difficulty, type and language.
func (p GenerateParams) WithDefaults() GenerateParams {
	p.Subject = strings.TrimSpace(p.Subject)
	p.Level = strings.TrimSpace(p.Level)
	p.Topic = strings.TrimSpace(p.Topic)
	if p.Difficulty == "" {
		p.Difficulty = exercise.DifficultyMedium
	}
	if p.Type == "" {
		p.Type = exercise.TypeQCM
	}
	if p.Language == "" {
		p.Language = "fr"
	}
	return p
}

// Validate checks the required fields and the enumerations.
func (p GenerateParams) Validate() error {
	if strings.TrimSpace(p.Subject) == "" || strings.TrimSpace(p.Level) == "" || strings.TrimSpace(p.Topic) == "" {
		return ErrMissingParams
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return errors.New("difficulty must be easy, medium or hard")
	}
	if p.Type != "" && !p.Type.Known() {
		return errors.New("exercise type must be qcm or classic")
	}
	if p.Language != "" && p.Language != "fr" && p.Language != "en" {
		return errors.New("language must be fr or en")
	}
	return nil
}

// Draft is a generated exercise that has not been saved.
type Draft struct {
	Exercise *exercise.Exercise
	Params   GenerateParams
}

// Level is a school level as offered by the platform.
type Level struct {
	Value string
	Label string
}

// Levels lists the school levels from CP1 to Terminale.
var Levels = []Level{
	{"cp1", "CP1"}, {"cp2", "CP2"},
	{"ce1", "CE1"}, {"ce2", "CE2"},
	{"cm1", "CM1"}, {"cm2", "CM2"},
	{"sixieme", "6ème"}, {"cinquieme", "5ème"},
	{"quatrieme", "4ème"}, {"troisieme", "3ème"},
	{"seconde", "Seconde"}, {"premiere", "Première"},
	{"terminale", "Terminale"},
}

// LevelLabel returns the display label for a level value.
func LevelLabel(value string) string {
	for _, l := range Levels {
		if l.Value == value {
			return l.Label
		}
	}
	return value
}

// sendable drops local system notes.
func sendable(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}
