// Package generate is the AI exercise generator screen: a form, a draft
// preview, and saving the draft to the platform.
package generate

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/practice"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
)

type step int

const (
	stepForm step = iota
	stepGenerating
	stepPreview
	stepSaving
)

type field int

const (
	fieldSubject field = iota
	fieldLevel
	fieldTopic
	fieldDifficulty
	fieldType
	fieldLanguage
	fieldCount
)

var (
	difficulties = []exercise.Difficulty{exercise.DifficultyEasy, exercise.DifficultyMedium, exercise.DifficultyHard}
	types        = []exercise.Type{exercise.TypeQCM, exercise.TypeClassic}
	languages    = []string{"fr", "en"}
)

type draftMsg struct {
	owner *Screen
	Draft *tutor.Draft
	Err   error
}

type savedMsg struct {
	owner    *Screen
	Exercise *exercise.Exercise
	Err      error
}

// Screen drafts exercises with deps.Generator.
type Screen struct {
	deps screen.Deps
	step step

	focus      field
	subject    components.TextInput
	topic      components.TextInput
	level      int
	difficulty int
	typ        int
	language   int

	draft *tutor.Draft
	err   error

	ctx    context.Context
	cancel context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates the generator screen. p pre-fills the form.
func New(deps screen.Deps, p tutor.GenerateParams) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen{
		deps:       deps,
		subject:    components.NewTextInput("Mathématiques", false, 100),
		topic:      components.NewTextInput("les fractions", false, 200),
		level:      indexOf(levelValues(), p.Level, 5),
		difficulty: indexOf(difficulties, p.Difficulty, 1),
		typ:        indexOf(types, p.Type, 0),
		language:   indexOf(languages, p.Language, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.subject.Model.SetValue(p.Subject)
	s.topic.Model.SetValue(p.Topic)
	s.topic.Blur()
	return s
}

func levelValues() []string {
	out := make([]string, len(tutor.Levels))
	for i, l := range tutor.Levels {
		out[i] = l.Value
	}
	return out
}

func indexOf[T comparable](values []T, v T, fallback int) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return fallback
}

func (s *Screen) Init() tea.Cmd {
	return s.subject.Init()
}

func (s *Screen) Title() string {
	return "Générer un exercice"
}

// Close cancels a generation or save in flight.
func (s *Screen) Close() {
	s.cancel()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Échap", Description: "Retour"}
	switch s.step {
	case stepGenerating, stepSaving:
		return []layout.KeyHint{{Key: "…", Description: "Patiente"}}
	case stepPreview:
		return []layout.KeyHint{
			{Key: "s", Description: "Enregistrer"},
			{Key: "g", Description: "Régénérer"},
			{Key: "d", Description: "Abandonner"},
			back,
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Champ"},
		{Key: "←→", Description: "Choix"},
		{Key: "Entrée", Description: "Générer"},
		back,
	}
}

// Params returns the form as generation parameters.
func (s *Screen) Params() tutor.GenerateParams {
	return tutor.GenerateParams{
		Subject:    s.subject.Value(),
		Level:      tutor.Levels[s.level].Value,
		Topic:      s.topic.Value(),
		Difficulty: difficulties[s.difficulty],
		Type:       types[s.typ],
		Language:   languages[s.language],
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case draftMsg:
		if msg.owner != s || s.step != stepGenerating {
			return s, nil
		}
		if msg.Err != nil {
			s.err = msg.Err
			s.step = stepForm
			s.deps.Logger.Warn().Err(msg.Err).Msg("generate exercise")
			return s, nil
		}
		s.draft = msg.Draft
		s.step = stepPreview
		return s, nil

	case savedMsg:
		if msg.owner != s || s.step != stepSaving {
			return s, nil
		}
		if msg.Err != nil {
			s.err = msg.Err
			s.step = stepPreview
			s.deps.Logger.Warn().Err(msg.Err).Msg("save generated exercise")
			return s, nil
		}
		saved := msg.Exercise
		deps := s.deps
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: practice.NewWithExercise(deps, saved)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.updateInput(msg)
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.step {
	case stepGenerating, stepSaving:
		return s, nil
	case stepPreview:
		switch key {
		case "s":
			return s, s.save()
		case "g":
			return s, s.generate()
		case "d":
			s.draft = nil
			s.err = nil
			s.step = stepForm
		}
		return s, nil
	}

	switch key {
	case "enter":
		return s, s.generate()
	case "down", "tab":
		return s, s.setFocus((s.focus + 1) % fieldCount)
	case "up", "shift+tab":
		return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "left", "right":
		if s.cycle(key == "right") {
			return s, nil
		}
	}
	return s.updateInput(msg)
}

// cycle steps the focused choice field. It reports false on text fields.
func (s *Screen) cycle(forward bool) bool {
	step := func(i, n int) int {
		if forward {
			return (i + 1) % n
		}
		return (i + n - 1) % n
	}
	switch s.focus {
	case fieldLevel:
		s.level = step(s.level, len(tutor.Levels))
	case fieldDifficulty:
		s.difficulty = step(s.difficulty, len(difficulties))
	case fieldType:
		s.typ = step(s.typ, len(types))
	case fieldLanguage:
		s.language = step(s.language, len(languages))
	default:
		return false
	}
	return true
}

func (s *Screen) setFocus(f field) tea.Cmd {
	s.focus = f
	s.subject.Blur()
	s.topic.Blur()
	switch f {
	case fieldSubject:
		return s.subject.Focus()
	case fieldTopic:
		return s.topic.Focus()
	}
	return nil
}

func (s *Screen) updateInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.step != stepForm {
		return s, nil
	}
	var cmd tea.Cmd
	switch s.focus {
	case fieldSubject:
		s.subject, cmd = s.subject.Update(msg)
	case fieldTopic:
		s.topic, cmd = s.topic.Update(msg)
	}
	return s, cmd
}

func (s *Screen) generate() tea.Cmd {
	p := s.Params().WithDefaults()
	if err := p.Validate(); err != nil {
		s.err = err
		return nil
	}
	s.err = nil
	s.step = stepGenerating
	ctx, gen := s.ctx, s.deps.Generator
	return func() tea.Msg {
		d, err := gen.Generate(ctx, p)
		return draftMsg{owner: s, Draft: d, Err: err}
	}
}

func (s *Screen) save() tea.Cmd {
	if s.draft == nil {
		return nil
	}
	s.err = nil
	s.step = stepSaving
	ctx, gen, d := s.ctx, s.deps.Generator, s.draft
	return func() tea.Msg {
		ex, err := gen.Save(ctx, d)
		return savedMsg{owner: s, Exercise: ex, Err: err}
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, tutor.ErrMissingParams):
		return "La matière, le niveau et le thème sont obligatoires."
	case errors.Is(err, tutor.ErrUnknownSubject):
		return "Matière inconnue sur la plateforme : vérifie son nom."
	case errors.Is(err, tutor.ErrInvalidDraft):
		return "L'exercice généré est incohérent. Régénère-le."
	}
	return err.Error()
}
