// Package quizrun is the screen for one attempt at a quiz.
package quizrun

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/quiz"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
)

// Screen hosts a quiz.Session from the intro to the result.
type Screen struct {
	deps screen.Deps
	id   int64

	session  *quiz.Session
	lists    []components.OptionList // options of the current question
	sub      int                     // focused sub-question
	input    components.TextInput
	shownIdx int

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

// New creates a screen that loads quiz id.
func New(deps screen.Deps, id int64) *Screen {
	s := newScreen(deps)
	s.id = id
	s.loading = true
	return s
}

// NewWithQuiz creates a screen for a quiz already fetched with its
// exercises.
func NewWithQuiz(deps screen.Deps, q *quiz.Quiz) *Screen {
	s := newScreen(deps)
	s.id = q.ID
	s.session = quiz.NewSession(q)
	return s
}

func newScreen(deps screen.Deps) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		deps:     deps,
		input:    components.NewTextInput("Ta réponse...", false, 500),
		shownIdx: -1,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Screen) Init() tea.Cmd {
	if s.session == nil {
		return s.load()
	}
	return nil
}

func (s *Screen) Title() string {
	if s.session != nil {
		return s.session.Quiz().Title
	}
	return "Quiz"
}

// Close stops the clock and cancels any request in flight.
func (s *Screen) Close() {
	s.closed = true
	s.cancel()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Échap", Description: "Retour"}
	if s.session == nil {
		if s.loadErr != nil && !s.notFound {
			return []layout.KeyHint{{Key: "r", Description: "Réessayer"}, back}
		}
		return []layout.KeyHint{back}
	}

	switch s.session.Phase() {
	case quiz.PhaseIntro:
		if s.session.Starting() {
			return []layout.KeyHint{{Key: "…", Description: "Démarrage"}}
		}
		return []layout.KeyHint{{Key: "Entrée", Description: "Commencer"}, back}
	case quiz.PhaseSubmitting:
		return []layout.KeyHint{{Key: "…", Description: "Envoi des réponses"}}
	case quiz.PhaseCompleted:
		return []layout.KeyHint{{Key: "r", Description: "Recommencer"}, back}
	}

	hints := []layout.KeyHint{{Key: "←→", Description: "Question"}}
	if len(s.lists) > 0 {
		hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Cocher"})
	}
	if s.session.CanFinish() {
		hints = append(hints, layout.KeyHint{Key: "Entrée", Description: "Terminer"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Entrée", Description: "Suivante"})
	}
	return append(hints, back)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.owner != s {
			return s, nil
		}
		return s.handleLoaded(msg)

	case startedMsg:
		if msg.owner != s || msg.session != s.session {
			return s, nil
		}
		return s.handleStarted(msg)

	case finishedMsg:
		if msg.owner != s || msg.session != s.session {
			return s, nil
		}
		return s.handleFinished(msg)

	case timerTickMsg:
		if msg.owner != s {
			return s, nil
		}
		return s.handleTick()

	case recordedMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn().Err(msg.Err).Int64("quiz_id", s.id).Msg("quiz attempt not recorded")
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.answeringText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) load() tea.Cmd {
	id, ctx, apiClient := s.id, s.ctx, s.deps.API
	return func() tea.Msg {
		q, err := apiClient.GetQuiz(ctx, id)
		return loadedMsg{owner: s, Quiz: q, Err: err}
	}
}

func (s *Screen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		s.loadErr = msg.Err
		s.notFound = errors.Is(msg.Err, api.ErrNotFound)
		s.deps.Logger.Error().Err(msg.Err).Int64("quiz_id", s.id).Msg("load quiz")
		return s, nil
	}
	s.loadErr = nil
	s.session = quiz.NewSession(msg.Quiz)
	return s, nil
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
	case quiz.PhaseIntro:
		if key == "enter" {
			return s, s.start()
		}
		return s, nil
	case quiz.PhaseSubmitting:
		return s, nil
	case quiz.PhaseCompleted:
		if key == "r" {
			s.session = s.session.Retry()
			s.recorded = false
			s.shownIdx = -1
			s.lists = nil
			s.notice = ""
		}
		return s, nil
	}

	s.notice = ""
	switch key {
	case "enter":
		if s.session.CanFinish() {
			return s, s.finish()
		}
		if len(s.lists) > 0 && !exercise.IsComplete(s.session.Current(), s.session.CurrentAnswer()) {
			s.pick(s.lists[s.sub].Cursor)
			return s, nil
		}
		s.session.Next()
		return s, s.syncQuestion()
	case "right", "pgdown":
		s.session.Next()
		return s, s.syncQuestion()
	case "left", "pgup":
		s.session.Previous()
		return s, s.syncQuestion()
	case "tab":
		if len(s.lists) > 1 {
			s.sub = (s.sub + 1) % len(s.lists)
			s.focusList()
		}
		return s, nil
	case "shift+tab":
		if len(s.lists) > 1 {
			s.sub = (s.sub + len(s.lists) - 1) % len(s.lists)
			s.focusList()
		}
		return s, nil
	}

	if len(s.lists) > 0 {
		var picked int
		s.lists[s.sub], picked = s.lists[s.sub].Update(msg)
		if picked != exercise.Unanswered {
			s.pick(picked)
		}
		return s, nil
	}

	if s.answeringText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		var err error
		if v := s.input.Value(); v == "" {
			err = s.session.SetAnswer(nil)
		} else {
			err = s.session.SetAnswer(exercise.Text(v))
		}
		if err != nil {
			s.notice = err.Error()
		}
		return s, cmd
	}
	return s, nil
}

func (s *Screen) start() tea.Cmd {
	if err := s.session.BeginStart(); err != nil {
		s.notice = startNotice(err)
		return nil
	}
	sess, ctx, apiClient := s.session, s.ctx, s.deps.API
	id := sess.Quiz().ID
	return func() tea.Msg {
		attemptID, err := apiClient.StartQuiz(ctx, id)
		return startedMsg{owner: s, session: sess, AttemptID: attemptID, Err: err}
	}
}

func startNotice(err error) string {
	if errors.Is(err, quiz.ErrEmpty) {
		return "Ce quiz ne contient aucune question."
	}
	return err.Error()
}

func (s *Screen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	s.session.Started(msg.AttemptID, msg.Err)
	if err := s.session.Err(); err != nil {
		s.deps.Logger.Warn().Err(err).Int64("quiz_id", s.id).Msg("start quiz")
		return s, nil
	}
	return s, tea.Batch(s.syncQuestion(), s.startClock())
}

func (s *Screen) finish() tea.Cmd {
	sub, err := s.session.BeginFinish()
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.setControlsDisabled(true)
	sess, ctx, apiClient := s.session, s.ctx, s.deps.API
	id := sess.Quiz().ID
	return func() tea.Msg {
		res, err := apiClient.SubmitQuiz(ctx, id, sub)
		return finishedMsg{owner: s, session: sess, Result: res, Err: err}
	}
}

func (s *Screen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	s.session.Complete(msg.Result, msg.Err)
	if err := s.session.Err(); err != nil {
		s.deps.Logger.Warn().Err(err).Int64("quiz_id", s.id).Msg("submit quiz")
		return s, s.setControlsDisabled(false)
	}
	return s, s.record()
}

func (s *Screen) record() tea.Cmd {
	res := s.session.Result()
	if s.deps.History == nil || s.recorded || res == nil {
		return nil
	}
	s.recorded = true

	answered, total := s.session.Progress()
	data := store.QuizAttemptData{
		QuizID:        s.session.Quiz().ID,
		AttemptID:     s.session.AttemptID(),
		Title:         s.session.Quiz().Title,
		Score:         res.Score,
		TotalScore:    res.TotalScore,
		Percentage:    res.Percentage,
		IsPassed:      res.IsPassed,
		Answered:      answered,
		Questions:     total,
		TimeSpentSecs: int(s.session.Elapsed().Seconds()),
	}
	repo := s.deps.History
	return func() tea.Msg {
		_, err := repo.AppendQuizAttempt(context.Background(), data)
		return recordedMsg{Err: err}
	}
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

// syncQuestion rebuilds the controls when the current question changes.
func (s *Screen) syncQuestion() tea.Cmd {
	if s.session.Index() == s.shownIdx {
		return nil
	}
	s.shownIdx = s.session.Index()
	s.sub = 0
	s.lists = nil

	ex := s.session.Current()
	if ex == nil {
		return nil
	}
	switch c := ex.Content.(type) {
	case exercise.SingleQCM:
		s.lists = []components.OptionList{components.NewOptionList(c.Question, c.Options)}
	case exercise.MultiQCM:
		for _, q := range c.Questions {
			s.lists = append(s.lists, components.NewOptionList(q.Question, q.Options))
		}
	case exercise.Classic:
		s.input.Clear()
		if t, ok := s.session.CurrentAnswer().(exercise.Text); ok {
			s.input.Model.SetValue(string(t))
		}
		s.focusList()
		return s.input.Focus()
	}
	s.focusList()
	return nil
}

func (s *Screen) pick(option int) {
	var err error
	if len(s.lists) > 1 {
		err = s.session.SelectSubOption(s.sub, option)
		if err == nil && s.sub < len(s.lists)-1 {
			s.sub++
			s.focusList()
		}
	} else {
		err = s.session.SelectOption(option)
	}
	if err != nil {
		s.notice = err.Error()
	}
}

// selected returns the recorded option for sub-question q of the current
// question.
func (s *Screen) selected(q int) int {
	switch a := s.session.CurrentAnswer().(type) {
	case exercise.Option:
		if q == 0 {
			return int(a)
		}
	case exercise.Options:
		if q < len(a) {
			return a[q]
		}
	}
	return exercise.Unanswered
}

func (s *Screen) setControlsDisabled(disabled bool) tea.Cmd {
	for i := range s.lists {
		s.lists[i].Disabled = disabled || i != s.sub
	}
	if disabled {
		s.input.Blur()
		return nil
	}
	if s.answeringText() {
		return s.input.Focus()
	}
	return nil
}

func (s *Screen) focusList() {
	for i := range s.lists {
		s.lists[i].Disabled = i != s.sub
	}
}

func (s *Screen) answeringText() bool {
	if s.session == nil || s.session.Phase() != quiz.PhaseInProgress {
		return false
	}
	ex := s.session.Current()
	if ex == nil {
		return false
	}
	_, ok := ex.Content.(exercise.Classic)
	return ok
}
