package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tutorat/tutorat/internal/exercise"
)

var (
	// ErrNotStarted is returned when answering or finishing before the
	// server has issued an attempt id.
	ErrNotStarted = errors.New("quiz not started")

	ErrStarted   = errors.New("quiz already started")
	ErrInFlight  = errors.New("request in progress")
	ErrCompleted = errors.New("quiz completed")
	ErrNotLast   = errors.New("not on the last question")
	ErrEmpty     = errors.New("quiz has no questions")
	ErrNoAttempt = errors.New("server returned no attempt id")
	ErrNoResult  = errors.New("empty quiz result")
)

// Phase is where a quiz attempt stands.
type Phase int

const (
	PhaseIntro      Phase = iota // Quiz shown, not started
	PhaseInProgress              // Attempt open, answers accepted
	PhaseSubmitting              // Finish request in flight
	PhaseCompleted               // Result received
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseInProgress:
		return "in progress"
	case PhaseSubmitting:
		return "submitting"
	case PhaseCompleted:
		return "completed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// API is the server side of a quiz attempt.
type API interface {
	StartQuiz(ctx context.Context, id int64) (attemptID int64, err error)
	SubmitQuiz(ctx context.Context, id int64, sub Submission) (*Result, error)
}

// Session is one attempt at a quiz. It is owned by a single view and is
// not safe for concurrent use.
type Session struct {
	quiz *Quiz

	phase     Phase
	starting  bool
	attemptID int64
	current   int
	answers   map[int64]exercise.Answer
	elapsed   int // seconds
	result    *Result
	err       error
}

// NewSession returns a session in PhaseIntro. Nil questions are skipped.
func NewSession(q *Quiz) *Session {
	if q != nil && slices.Contains(q.Exercises, nil) {
		c := *q
		c.Exercises = compact(slices.Clone(q.Exercises))
		q = &c
	}
	return &Session{quiz: q, answers: make(map[int64]exercise.Answer)}
}

func (s *Session) Quiz() *Quiz { return s.quiz }
func (s *Session) Phase() Phase { return s.phase }
func (s *Session) AttemptID() int64 { return s.attemptID }
func (s *Session) Index() int { return s.current }
func (s *Session) Result() *Result { return s.result }

// Err returns the error of the last failed start or finish.
func (s *Session) Err() error { return s.err }

// Starting reports whether a start request is in flight.
func (s *Session) Starting() bool { return s.starting }

// Elapsed is the time on the quiz clock.
func (s *Session) Elapsed() time.Duration { return time.Duration(s.elapsed) * time.Second }

// Remaining is the time left under the quiz time limit, if it has one.
// It goes negative once the limit is exceeded; the limit is advisory.
func (s *Session) Remaining() (time.Duration, bool) {
	if s.quiz.TimeLimit == nil || *s.quiz.TimeLimit <= 0 {
		return 0, false
	}
	return time.Duration(*s.quiz.TimeLimit)*time.Minute - s.Elapsed(), true
}

// Current returns the exercise at the current index, or nil for an empty
// quiz.
func (s *Session) Current() *exercise.Exercise {
	if s.current < 0 || s.current >= s.quiz.Len() {
		return nil
	}
	return s.quiz.Exercises[s.current]
}

// AnswerFor returns the recorded answer for an exercise id.
func (s *Session) AnswerFor(id int64) exercise.Answer {
	return s.answers[id]
}

// CurrentAnswer returns the recorded answer for the current question.
func (s *Session) CurrentAnswer() exercise.Answer {
	if ex := s.Current(); ex != nil {
		return s.answers[ex.ID]
	}
	return nil
}

// BeginStart marks a start request as in flight.
func (s *Session) BeginStart() error {
	switch {
	case s.phase != PhaseIntro:
		return ErrStarted
	case s.starting:
		return ErrInFlight
	case s.quiz.Len() == 0:
		return ErrEmpty
	}
	s.starting = true
	s.err = nil
	return nil
}

// Started ends a start request. On success the attempt id is recorded and
// the quiz moves to PhaseInProgress; on failure it stays in PhaseIntro
// with Err set.
func (s *Session) Started(attemptID int64, err error) {
	if !s.starting {
		return
	}
	s.starting = false
	if err == nil && attemptID <= 0 {
		err = ErrNoAttempt
	}
	if err != nil {
		s.err = err
		return
	}
	s.attemptID = attemptID
	s.current = 0
	s.phase = PhaseInProgress
}

// Start runs the start round trip against api.
func (s *Session) Start(ctx context.Context, api API) error {
	if err := s.BeginStart(); err != nil {
		return err
	}
	id, err := api.StartQuiz(ctx, s.quiz.ID)
	s.Started(id, err)
	return s.err
}

// Next moves to the following question. It is a no-op on the last one and
// outside PhaseInProgress.
func (s *Session) Next() bool {
	if s.phase != PhaseInProgress || s.current >= s.quiz.Len()-1 {
		return false
	}
	s.current++
	return true
}

// Previous moves to the preceding question. It is a no-op on the first
// one and outside PhaseInProgress.
func (s *Session) Previous() bool {
	if s.phase != PhaseInProgress || s.current <= 0 {
		return false
	}
	s.current--
	return true
}

// SetAnswer records a for the current question. nil clears it.
func (s *Session) SetAnswer(a exercise.Answer) error {
	if err := s.answerable(); err != nil {
		return err
	}
	ex := s.Current()
	if a == nil {
		delete(s.answers, ex.ID)
		return nil
	}
	if err := exercise.Validate(ex, a); err != nil {
		return err
	}
	if o, ok := a.(exercise.Options); ok {
		a = append(exercise.Options(nil), o...)
	}
	s.answers[ex.ID] = a
	return nil
}

// SelectOption picks option i on a single-question qcm.
func (s *Session) SelectOption(i int) error {
	return s.SetAnswer(exercise.Option(i))
}

// SelectSubOption picks option i for sub-question q of the current
// multi-question qcm.
func (s *Session) SelectSubOption(q, i int) error {
	if err := s.answerable(); err != nil {
		return err
	}
	m, ok := s.Current().Content.(exercise.MultiQCM)
	if !ok {
		return fmt.Errorf("%w: not a multi-question exercise", exercise.ErrInvalidAnswer)
	}
	if q < 0 || q >= len(m.Questions) {
		return fmt.Errorf("%w: question %d out of range", exercise.ErrInvalidAnswer, q)
	}
	next := exercise.NewOptions(len(m.Questions))
	if cur, ok := s.CurrentAnswer().(exercise.Options); ok {
		copy(next, cur)
	}
	next[q] = i
	return s.SetAnswer(next)
}

func (s *Session) answerable() error {
	switch s.phase {
	case PhaseIntro:
		return ErrNotStarted
	case PhaseSubmitting:
		return ErrInFlight
	case PhaseCompleted:
		return ErrCompleted
	}
	if s.attemptID == 0 {
		return ErrNotStarted
	}
	if s.Current() == nil {
		return ErrEmpty
	}
	return nil
}

// CanFinish reports whether the finish control should be enabled.
func (s *Session) CanFinish() bool {
	return s.phase == PhaseInProgress && s.attemptID != 0 && s.current == s.quiz.Len()-1
}

// BeginFinish moves to PhaseSubmitting and returns the request body.
func (s *Session) BeginFinish() (Submission, error) {
	switch {
	case s.phase == PhaseSubmitting:
		return Submission{}, ErrInFlight
	case s.phase == PhaseCompleted:
		return Submission{}, ErrCompleted
	case s.phase != PhaseInProgress || s.attemptID == 0:
		return Submission{}, ErrNotStarted
	case !s.CanFinish():
		return Submission{}, ErrNotLast
	}

	answers := make(map[string]any, len(s.answers))
	for id, a := range s.answers {
		answers[key(id)] = encode(a)
	}
	s.phase = PhaseSubmitting
	s.err = nil
	return Submission{AttemptID: s.attemptID, Answers: answers, TimeSpent: s.elapsed}, nil
}

// Complete ends a finish request. On failure the quiz returns to
// PhaseInProgress with its answers and position untouched.
func (s *Session) Complete(result *Result, err error) {
	if s.phase != PhaseSubmitting {
		return
	}
	if err == nil && result == nil {
		err = ErrNoResult
	}
	if err != nil {
		s.err = err
		s.phase = PhaseInProgress
		return
	}
	s.result = result
	s.phase = PhaseCompleted
}

// Finish runs the finish round trip against api.
func (s *Session) Finish(ctx context.Context, api API) error {
	sub, err := s.BeginFinish()
	if err != nil {
		return err
	}
	res, err := api.SubmitQuiz(ctx, s.quiz.ID, sub)
	s.Complete(res, err)
	return s.err
}

// Tick advances the quiz clock by one second while the attempt is open.
// It returns false when the clock is not running.
func (s *Session) Tick() bool {
	if s.phase != PhaseInProgress && s.phase != PhaseSubmitting {
		return false
	}
	s.elapsed++
	return true
}

// Running reports whether the quiz clock is running.
func (s *Session) Running() bool {
	return s.phase == PhaseInProgress || s.phase == PhaseSubmitting
}

// Retry returns a fresh session for the same quiz. Nothing from this
// attempt carries over.
func (s *Session) Retry() *Session {
	return NewSession(s.quiz)
}

// Progress returns how many questions have a complete answer.
func (s *Session) Progress() (answered, total int) {
	for _, ex := range s.quiz.Exercises {
		if exercise.IsComplete(ex, s.answers[ex.ID]) {
			answered++
		}
	}
	return answered, s.quiz.Len()
}
