// Package practice is the screen for one attempt at an exercise.
package practice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
)

// Screen hosts an exercise.Session. The exercise is fetched by id unless
// it was handed over already.
type Screen struct {
	deps screen.Deps
	id   int64

	session  *exercise.Session
	lists    []components.OptionList
	question int // focused sub-question
	input    components.TextInput

	loading  bool
	loadErr  error
	notFound bool
	notice   string
	ticking  bool
	recorded bool
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates a screen that loads exercise id.
func New(deps screen.Deps, id int64) *Screen {
	s := newScreen(deps)
	s.id = id
	s.loading = true
	return s
}

// NewWithExercise creates a screen for an exercise already fetched.
func NewWithExercise(deps screen.Deps, ex *exercise.Exercise) *Screen {
	s := newScreen(deps)
	s.id = ex.ID
	s.setExercise(ex)
	return s
}

func newScreen(deps screen.Deps) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		deps:   deps,
		input:  components.NewTextInput("Ta réponse...", false, 500),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Screen) Init() tea.Cmd {
	if s.session == nil {
		return s.load()
	}
	return tea.Batch(s.startClock(), s.input.Init())
}

func (s *Screen) Title() string {
	if s.session != nil {
		return s.session.Exercise().Title
	}
	return "Exercice"
}

// Close stops the clock and cancels any request in flight.
func (s *Screen) Close() {
	s.closed = true
	s.cancel()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.session == nil && s.loadErr != nil && !s.notFound:
		return []layout.KeyHint{{Key: "r", Description: "Réessayer"}, {Key: "Échap", Description: "Retour"}}
	case s.session == nil:
		return []layout.KeyHint{{Key: "Échap", Description: "Retour"}}
	case s.session.Phase() == exercise.PhaseSubmitting:
		return []layout.KeyHint{{Key: "…", Description: "Correction en cours"}}
	case s.session.Phase() == exercise.PhaseGraded:
		return []layout.KeyHint{{Key: "r", Description: "Recommencer"}, {Key: "Échap", Description: "Retour"}}
	}

	hints := []layout.KeyHint{{Key: "Entrée", Description: "Valider"}}
	if s.isQCM() {
		hints = append([]layout.KeyHint{{Key: "↑↓", Description: "Choisir"}, {Key: "1-9", Description: "Cocher"}}, hints...)
		if len(s.lists) > 1 {
			hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Question suivante"})
		}
	}
	if s.session.HintsLeft() > 0 {
		hints = append(hints, layout.KeyHint{Key: s.hintKey(), Description: "Indice"})
	}
	return append(hints, layout.KeyHint{Key: "Échap", Description: "Retour"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.owner != s {
			return s, nil
		}
		return s.handleLoaded(msg)

	case timerTickMsg:
		if msg.owner != s {
			return s, nil
		}
		return s.handleTick()

	case submittedMsg:
		if msg.owner != s {
			return s, nil
		}
		return s.handleSubmitted(msg)

	case recordedMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn().Err(msg.Err).Int64("exercise_id", s.id).Msg("attempt not recorded")
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.session != nil && s.isClassic() && s.session.Phase() != exercise.PhaseSubmitting {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) load() tea.Cmd {
	id, ctx, apiClient := s.id, s.ctx, s.deps.API
	return func() tea.Msg {
		ex, err := apiClient.GetExercise(ctx, id)
		return loadedMsg{owner: s, Exercise: ex, Err: err}
	}
}

func (s *Screen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		s.loadErr = msg.Err
		s.notFound = errors.Is(msg.Err, api.ErrNotFound)
		s.deps.Logger.Error().Err(msg.Err).Int64("exercise_id", s.id).Msg("load exercise")
		return s, nil
	}
	s.setExercise(msg.Exercise)
	return s, tea.Batch(s.startClock(), s.input.Init())
}

func (s *Screen) setExercise(ex *exercise.Exercise) {
	s.session = exercise.NewSession(ex)
	s.loadErr = nil
	s.question = 0
	s.lists = optionLists(ex)
	s.focusList()
}

func optionLists(ex *exercise.Exercise) []components.OptionList {
	switch c := ex.Content.(type) {
	case exercise.SingleQCM:
		return []components.OptionList{components.NewOptionList(c.Question, c.Options)}
	case exercise.MultiQCM:
		lists := make([]components.OptionList, len(c.Questions))
		for i, q := range c.Questions {
			lists[i] = components.NewOptionList(q.Question, q.Options)
		}
		return lists
	}
	return nil
}

func (s *Screen) startClock() tea.Cmd {
	if s.ticking || s.closed || s.session == nil || !s.session.Running() {
		return nil
	}
	s.ticking = true
	return s.tickCmd()
}

func (s *Screen) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{owner: s}
	})
}

func (s *Screen) handleTick() (screen.Screen, tea.Cmd) {
	if s.closed || s.session == nil || !s.session.Tick() {
		s.ticking = false
		return s, nil
	}
	return s, s.tickCmd()
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.session == nil {
		if key == "r" && s.loadErr != nil && !s.notFound && !s.loading {
			s.loadErr = nil
			s.loading = true
			return s, s.load()
		}
		return s, nil
	}

	switch s.session.Phase() {
	case exercise.PhaseSubmitting:
		return s, nil
	case exercise.PhaseGraded:
		if key == "r" {
			return s, s.retry()
		}
		return s, nil
	}

	s.notice = ""
	switch key {
	case "enter":
		return s, s.submitOrSelect()
	case s.hintKey():
		if _, ok := s.session.RequestHint(); !ok {
			s.notice = "Plus d'indice disponible."
		}
		return s, nil
	}

	if s.isQCM() {
		switch key {
		case "tab", "right", "l":
			if s.question < len(s.lists)-1 {
				s.question++
				s.focusList()
			}
			return s, nil
		case "shift+tab", "left":
			if s.question > 0 {
				s.question--
				s.focusList()
			}
			return s, nil
		}
		var picked int
		s.lists[s.question], picked = s.lists[s.question].Update(msg)
		if picked != exercise.Unanswered {
			s.pick(picked)
		}
		return s, nil
	}

	if s.isClassic() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if err := s.session.SetText(s.input.Value()); err != nil {
			s.notice = err.Error()
		}
		return s, cmd
	}
	return s, nil
}

func (s *Screen) pick(option int) {
	var err error
	if len(s.lists) > 1 {
		err = s.session.SelectSubOption(s.question, option)
		if err == nil && s.question < len(s.lists)-1 {
			s.question++
			s.focusList()
		}
	} else {
		err = s.session.SelectOption(option)
	}
	if err != nil {
		s.notice = err.Error()
	}
}

func (s *Screen) submitOrSelect() tea.Cmd {
	if !s.session.CanSubmit() {
		if s.isQCM() {
			s.pick(s.lists[s.question].Cursor)
			return nil
		}
		if !s.session.Exercise().Supported() {
			s.notice = "Ce type d'exercice ne peut pas être fait ici."
		} else {
			s.notice = "Réponds à toutes les questions avant de valider."
		}
		return nil
	}
	return s.submit()
}

func (s *Screen) submit() tea.Cmd {
	sub, err := s.session.BeginSubmit()
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.setControlsDisabled(true)
	ctx, apiClient := s.ctx, s.deps.API
	id, attempt := s.session.Exercise().ID, s.session.Attempt()
	return func() tea.Msg {
		res, err := apiClient.SubmitExercise(ctx, id, sub)
		return submittedMsg{owner: s, attempt: attempt, Result: res, Err: err}
	}
}

func (s *Screen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.attempt != s.session.Attempt() {
		return s, nil
	}
	s.session.Complete(msg.Result, msg.Err)
	if err := s.session.Err(); err != nil {
		s.deps.Logger.Warn().Err(err).Int64("exercise_id", s.id).Msg("submit exercise")
		return s, s.setControlsDisabled(false)
	}
	for i := range s.lists {
		s.lists[i].Disabled = true
	}
	s.input.Blur()
	return s, s.record()
}

func (s *Screen) record() tea.Cmd {
	if s.deps.History == nil || s.recorded || s.session.Result() == nil {
		return nil
	}
	s.recorded = true

	ex, res := s.session.Exercise(), s.session.Result()
	answer, _ := json.Marshal(exercise.Encode(s.session.Answer()))
	maxScore := ex.Points
	if res.MaxScore != nil {
		maxScore = *res.MaxScore
	}
	data := store.ExerciseAttemptData{
		ExerciseID:    ex.ID,
		Title:         ex.Title,
		ExerciseType:  string(ex.Type),
		Answer:        string(answer),
		IsCorrect:     res.IsCorrect,
		Score:         res.Score,
		MaxScore:      maxScore,
		HintsUsed:     s.session.HintsUsed(),
		TimeSpentSecs: int(s.session.Elapsed().Seconds()),
	}
	repo := s.deps.History
	return func() tea.Msg {
		_, err := repo.AppendExerciseAttempt(context.Background(), data)
		return recordedMsg{Err: err}
	}
}

func (s *Screen) retry() tea.Cmd {
	if err := s.session.Reset(); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.recorded = false
	s.question = 0
	s.lists = optionLists(s.session.Exercise())
	s.focusList()
	s.input.Clear()
	return tea.Batch(s.startClock(), s.input.Focus())
}

func (s *Screen) setControlsDisabled(disabled bool) tea.Cmd {
	for i := range s.lists {
		s.lists[i].Disabled = disabled || i != s.question
	}
	if disabled {
		s.input.Blur()
		return nil
	}
	return s.input.Focus()
}

func (s *Screen) focusList() {
	for i := range s.lists {
		s.lists[i].Disabled = i != s.question
	}
}

func (s *Screen) isQCM() bool {
	return len(s.lists) > 0
}

func (s *Screen) isClassic() bool {
	_, ok := s.session.Exercise().Content.(exercise.Classic)
	return ok
}

// hintKey is h, except where the learner is typing.
func (s *Screen) hintKey() string {
	if s.session != nil && s.isClassic() {
		return "ctrl+t"
	}
	return "h"
}
