package exercise

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HintPenalty is the number of points the server deducts per hint used.
// The client only uses it for display.
const HintPenalty = 2

// Phase is where an attempt stands.
type Phase int

const (
	PhaseUnanswered Phase = iota // No answer selected
	PhaseAnswered                // Answer present, editable
	PhaseSubmitting              // Submission in flight
	PhaseGraded                  // Result received, attempt frozen
)

func (p Phase) String() string {
	switch p {
	case PhaseUnanswered:
		return "unanswered"
	case PhaseAnswered:
		return "answered"
	case PhaseSubmitting:
		return "submitting"
	case PhaseGraded:
		return "graded"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Grader submits an answer for grading.
type Grader interface {
	SubmitExercise(ctx context.Context, id int64, sub Submission) (*GradingResult, error)
}

// Session is one attempt at an exercise. It is owned by a single view and
// is not safe for concurrent use.
type Session struct {
	ex *Exercise

	answer     Answer
	hintsUsed  int
	showHint   bool
	elapsed    int // seconds
	submitting bool
	result     *GradingResult
	err        error
	attempt    int
}

// NewSession starts the first attempt at ex.
func NewSession(ex *Exercise) *Session {
	return &Session{ex: ex, attempt: 1}
}

// Exercise returns the exercise being attempted.
func (s *Session) Exercise() *Exercise { return s.ex }

// Phase derives the current phase.
func (s *Session) Phase() Phase {
	switch {
	case s.result != nil:
		return PhaseGraded
	case s.submitting:
		return PhaseSubmitting
	case s.answer == nil:
		return PhaseUnanswered
	}
	return PhaseAnswered
}

// Answer returns the current answer, or nil.
func (s *Session) Answer() Answer { return s.answer }

// HintsUsed returns how many hints have been revealed.
func (s *Session) HintsUsed() int { return s.hintsUsed }

// HintVisible reports whether the hint panel should be shown.
func (s *Session) HintVisible() bool { return s.showHint }

// Elapsed returns the time spent on this attempt.
func (s *Session) Elapsed() time.Duration { return time.Duration(s.elapsed) * time.Second }

// Result returns the grading result once graded.
func (s *Session) Result() *GradingResult { return s.result }

// Err returns the error of the last failed submission, cleared on the next
// attempt to submit.
func (s *Session) Err() error { return s.err }

// Attempt is the 1-based number of this attempt within the session.
func (s *Session) Attempt() int { return s.attempt }

// SetAnswer replaces the answer. It fails with ErrFrozen once graded or
// ErrInFlight while submitting, and with ErrInvalidAnswer when a does not
// fit the exercise.
func (s *Session) SetAnswer(a Answer) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if a != nil {
		if err := Validate(s.ex, a); err != nil {
			return err
		}
	}
	if o, ok := a.(Options); ok {
		a = append(Options(nil), o...)
	}
	s.answer = a
	return nil
}

// SelectOption picks option i of a single-question qcm.
func (s *Session) SelectOption(i int) error {
	return s.SetAnswer(Option(i))
}

// SelectSubOption picks option i for sub-question q of a multi-question
// qcm, keeping the other selections.
func (s *Session) SelectSubOption(q, i int) error {
	m, ok := s.ex.Content.(MultiQCM)
	if !ok {
		return fmt.Errorf("%w: not a multi-question exercise", ErrInvalidAnswer)
	}
	next := NewOptions(len(m.Questions))
	if cur, ok := s.answer.(Options); ok {
		copy(next, cur)
	}
	if q < 0 || q >= len(next) {
		return fmt.Errorf("%w: question %d out of range", ErrInvalidAnswer, q)
	}
	next[q] = i
	return s.SetAnswer(next)
}

// SetText sets a free-form answer. Blank text clears the answer.
func (s *Session) SetText(text string) error {
	if strings.TrimSpace(text) == "" {
		return s.SetAnswer(nil)
	}
	return s.SetAnswer(Text(text))
}

func (s *Session) mutable() error {
	if s.result != nil {
		return ErrFrozen
	}
	if s.submitting {
		return ErrInFlight
	}
	return nil
}

// Validate checks that a non-nil answer fits the shape of ex.
func Validate(ex *Exercise, a Answer) error {
	switch c := ex.Content.(type) {
	case SingleQCM:
		o, ok := a.(Option)
		if !ok {
			return fmt.Errorf("%w: expected an option", ErrInvalidAnswer)
		}
		if int(o) < 0 || int(o) >= len(c.Options) {
			return fmt.Errorf("%w: option %d out of range", ErrInvalidAnswer, int(o))
		}
	case MultiQCM:
		o, ok := a.(Options)
		if !ok {
			return fmt.Errorf("%w: expected one option per question", ErrInvalidAnswer)
		}
		if len(o) != len(c.Questions) {
			return fmt.Errorf("%w: got %d selections for %d questions", ErrInvalidAnswer, len(o), len(c.Questions))
		}
		for q, v := range o {
			if v != Unanswered && (v < 0 || v >= len(c.Questions[q].Options)) {
				return fmt.Errorf("%w: option %d out of range for question %d", ErrInvalidAnswer, v, q)
			}
		}
	case Classic:
		switch a.(type) {
		case Text, Number:
		default:
			return fmt.Errorf("%w: expected a written answer", ErrInvalidAnswer)
		}
	default:
		return ErrUnsupported
	}
	return nil
}

// CanSubmit reports whether the submit control should be enabled.
func (s *Session) CanSubmit() bool {
	if s.result != nil || s.submitting {
		return false
	}
	return IsComplete(s.ex, s.answer)
}

// RequestHint reveals the next hint. It is a no-op once every hint is
// shown, while a submission is in flight, or after grading.
func (s *Session) RequestHint() (string, bool) {
	if s.result != nil || s.submitting || s.hintsUsed >= len(s.ex.Hints) {
		return "", false
	}
	h := s.ex.Hints[s.hintsUsed]
	s.hintsUsed++
	s.showHint = true
	return h, true
}

// RevealedHints returns the hints revealed so far, in order.
func (s *Session) RevealedHints() []string {
	return append([]string(nil), s.ex.Hints[:s.hintsUsed]...)
}

// HintsLeft is the number of hints not yet revealed.
func (s *Session) HintsLeft() int {
	return len(s.ex.Hints) - s.hintsUsed
}

// BeginSubmit moves to PhaseSubmitting and returns the request body.
func (s *Session) BeginSubmit() (Submission, error) {
	if err := s.mutable(); err != nil {
		return Submission{}, err
	}
	if !s.ex.Supported() {
		return Submission{}, ErrUnsupported
	}
	if !s.CanSubmit() {
		return Submission{}, ErrIncomplete
	}

	s.submitting = true
	s.err = nil
	return Submission{
		Answer:    Encode(s.answer),
		TimeSpent: s.elapsed,
		HintsUsed: s.hintsUsed,
	}, nil
}

// Complete ends a submission. On success the result is stored as received
// and the attempt is graded; on failure the session returns to
// PhaseAnswered with Err set so the learner can retry. Calls without a
// pending submission are ignored.
func (s *Session) Complete(result *GradingResult, err error) {
	if !s.submitting {
		return
	}
	s.submitting = false
	if err == nil && result == nil {
		err = ErrEmptyResult
	}
	if err != nil {
		s.err = err
		return
	}
	s.result = result
}

// Submit runs a whole submission round trip against g.
func (s *Session) Submit(ctx context.Context, g Grader) error {
	sub, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	res, err := g.SubmitExercise(ctx, s.ex.ID, sub)
	s.Complete(res, err)
	return s.err
}

// Tick advances the attempt clock by one second. The clock keeps running
// through a pending submission and stops for good once graded. It returns
// whether the clock is still running.
func (s *Session) Tick() bool {
	if s.result != nil {
		return false
	}
	s.elapsed++
	return true
}

// Running reports whether the clock is running.
func (s *Session) Running() bool {
	return s.result == nil
}

// Reset starts a new attempt at the same exercise.
func (s *Session) Reset() error {
	if s.submitting {
		return ErrInFlight
	}
	s.answer = nil
	s.result = nil
	s.showHint = false
	s.hintsUsed = 0
	s.elapsed = 0
	s.err = nil
	s.attempt++
	return nil
}

// DisplayPoints is the reward shown next to the exercise, less the hint
// penalty. Scoring itself happens on the server.
func (s *Session) DisplayPoints() int {
	p := s.ex.Points - HintPenalty*s.hintsUsed
	if p < 0 {
		return 0
	}
	return p
}

// OptionMark returns how option of question should be highlighted.
// Before grading only the selection is marked.
func (s *Session) OptionMark(question, option int) Mark {
	selected := s.selected(question) == option
	if s.result == nil {
		if selected {
			return MarkSelected
		}
		return MarkNeutral
	}

	correct, known := s.correctIndex(question)
	if !known && selected && s.ex.QuestionCount() == 1 {
		if s.result.IsCorrect {
			return MarkSelectedCorrect
		}
		return MarkSelectedWrong
	}

	switch {
	case selected && known && correct == option:
		return MarkSelectedCorrect
	case selected:
		return MarkSelectedWrong
	case known && correct == option:
		return MarkCorrect
	}
	return MarkNeutral
}

func (s *Session) selected(question int) int {
	switch a := s.answer.(type) {
	case Option:
		if question == 0 {
			return int(a)
		}
	case Options:
		if question >= 0 && question < len(a) {
			return a[question]
		}
	}
	return Unanswered
}

// correctIndex looks up the correct option for question in the grading
// result, then the exercise's answer key, then the draft's per-question
// key.
func (s *Session) correctIndex(question int) (int, bool) {
	if s.result != nil {
		if i, ok := correctAt(s.result.CorrectAnswer, question); ok {
			return i, true
		}
	}
	if i, ok := correctAt(s.ex.CorrectAnswers, question); ok {
		return i, true
	}
	if m, ok := s.ex.Content.(MultiQCM); ok && question >= 0 && question < len(m.Questions) {
		if c := m.Questions[question].CorrectOption; c != nil {
			return *c, true
		}
	}
	return 0, false
}
