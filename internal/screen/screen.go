package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/content"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/quiz"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens that hold timers or requests. The
// router calls Close when the screen is popped.
type Closer interface {
	Close()
}

// API is the part of the platform client the screens use.
type API interface {
	exercise.Grader
	quiz.API

	GetExercise(ctx context.Context, id int64) (*exercise.Exercise, error)
	ListExercises(ctx context.Context, f api.ExerciseFilter) ([]*exercise.Exercise, error)
	GetQuiz(ctx context.Context, id int64) (*quiz.Quiz, error)
	ListQuizzes(ctx context.Context, f api.QuizFilter) ([]*quiz.Quiz, error)
}

// Deps are the services screens are built from. A nil service disables
// the menu entries that need it.
type Deps struct {
	API          API
	History      store.EventRepo
	Conversation *tutor.Conversation
	Generator    *tutor.Generator
	Renderer     *content.Renderer
	Logger       zerolog.Logger
}

// Render returns the content renderer, falling back to the shared one.
func (d Deps) Render() *content.Renderer {
	if d.Renderer != nil {
		return d.Renderer
	}
	return content.Default()
}
