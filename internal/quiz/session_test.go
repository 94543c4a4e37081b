package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorat/tutorat/internal/exercise"
)

type fakeAPI struct {
	attemptID   int64
	startErr    error
	startCalls  int
	submitCalls int
	submitted   Submission
	result      *Result
	submitErr   error
}

func (f *fakeAPI) StartQuiz(context.Context, int64) (int64, error) {
	f.startCalls++
	return f.attemptID, f.startErr
}

func (f *fakeAPI) SubmitQuiz(_ context.Context, _ int64, sub Submission) (*Result, error) {
	f.submitCalls++
	f.submitted = sub
	return f.result, f.submitErr
}

func testQuiz(n int) *Quiz {
	q := &Quiz{ID: 9, Title: "Révisions", PassingScore: 50}
	for i := 0; i < n; i++ {
		q.Exercises = append(q.Exercises, &exercise.Exercise{
			ID:      int64(100 + i),
			Type:    exercise.TypeQCM,
			Points:  10,
			Content: exercise.SingleQCM{Question: "?", Options: []string{"a", "b", "c"}},
		})
	}
	return q
}

func started(t *testing.T, n int) (*Session, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{attemptID: 42}
	s := NewSession(testQuiz(n))
	require.NoError(t, s.Start(context.Background(), api))
	return s, api
}

func TestSession_AnswersRejectedBeforeStart(t *testing.T) {
	s := NewSession(testQuiz(2))
	assert.Equal(t, PhaseIntro, s.Phase())
	assert.ErrorIs(t, s.SelectOption(0), ErrNotStarted)
	assert.False(t, s.Tick())

	require.NoError(t, s.BeginStart())
	assert.True(t, s.Starting())
	assert.ErrorIs(t, s.SelectOption(0), ErrNotStarted, "answers wait for the attempt id")
	assert.ErrorIs(t, s.BeginStart(), ErrInFlight)

	s.Started(42, nil)
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, int64(42), s.AttemptID())
	assert.NoError(t, s.SelectOption(0))
}

func TestSession_StartFailureStaysInIntro(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("timeout")}
	s := NewSession(testQuiz(2))

	err := s.Start(context.Background(), api)
	assert.Error(t, err)
	assert.Equal(t, PhaseIntro, s.Phase())
	assert.False(t, s.Starting())

	api.startErr = nil
	api.attemptID = 0
	assert.ErrorIs(t, s.Start(context.Background(), api), ErrNoAttempt)
	assert.Equal(t, PhaseIntro, s.Phase())
}

func TestSession_NavigationBounded(t *testing.T) {
	s, _ := started(t, 3)

	assert.False(t, s.Previous())
	assert.Equal(t, 0, s.Index())

	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next())
	assert.Equal(t, 2, s.Index())

	assert.True(t, s.Previous())
	assert.Equal(t, 1, s.Index())
}

func TestSession_RevisitPreservesAnswers(t *testing.T) {
	s, _ := started(t, 3)

	require.NoError(t, s.SelectOption(2))
	s.Next()
	s.Next()
	require.NoError(t, s.SelectOption(1))
	s.Previous()
	s.Previous()

	assert.Equal(t, exercise.Option(2), s.CurrentAnswer())
	assert.Equal(t, exercise.Option(1), s.AnswerFor(102))
	assert.Nil(t, s.AnswerFor(101))

	answered, total := s.Progress()
	assert.Equal(t, 2, answered)
	assert.Equal(t, 3, total)
}

func TestSession_FinishOnlyFromLastQuestion(t *testing.T) {
	s, api := started(t, 2)
	require.NoError(t, s.SelectOption(0))

	assert.False(t, s.CanFinish())
	err := s.Finish(context.Background(), api)
	assert.ErrorIs(t, err, ErrNotLast)
	assert.Zero(t, api.submitCalls)
	assert.Equal(t, PhaseInProgress, s.Phase())
}

func TestSession_FinishSendsRawIndices(t *testing.T) {
	s, api := started(t, 2)
	api.result = &Result{Score: 10, TotalScore: 20, Percentage: 50, IsPassed: true}

	require.NoError(t, s.SelectOption(1))
	s.Next()
	require.NoError(t, s.SelectOption(2))
	s.Tick()

	require.True(t, s.CanFinish())
	require.NoError(t, s.Finish(context.Background(), api))

	assert.Equal(t, int64(42), api.submitted.AttemptID)
	assert.Equal(t, map[string]any{"100": 1, "101": 2}, api.submitted.Answers)
	assert.Equal(t, 1, api.submitted.TimeSpent)
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Same(t, api.result, s.Result())
}

func TestSession_SubmitNetworkErrorKeepsState(t *testing.T) {
	s, api := started(t, 2)
	require.NoError(t, s.SelectOption(0))
	s.Next()
	require.NoError(t, s.SelectOption(2))

	api.submitErr = errors.New("network unreachable")
	err := s.Finish(context.Background(), api)
	assert.ErrorIs(t, err, api.submitErr)

	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, exercise.Option(0), s.AnswerFor(100))
	assert.Equal(t, exercise.Option(2), s.AnswerFor(101))
	assert.Nil(t, s.Result())
	assert.True(t, s.CanFinish())
}

func TestSession_NoInteractionWhileSubmitting(t *testing.T) {
	s, _ := started(t, 1)
	require.NoError(t, s.SelectOption(0))
	_, err := s.BeginFinish()
	require.NoError(t, err)

	assert.ErrorIs(t, s.SelectOption(1), ErrInFlight)
	_, err = s.BeginFinish()
	assert.ErrorIs(t, err, ErrInFlight)
	assert.True(t, s.Tick(), "clock runs during the round trip")
}

func TestSession_ClockStopsAtCompleted(t *testing.T) {
	s, api := started(t, 1)
	api.result = &Result{Percentage: 100, IsPassed: true}
	s.Tick()
	s.Tick()
	require.NoError(t, s.Finish(context.Background(), api))

	assert.False(t, s.Tick())
	assert.False(t, s.Running())
	assert.Equal(t, 2, int(s.Elapsed().Seconds()))
	assert.ErrorIs(t, s.SelectOption(1), ErrCompleted)
}

func TestSession_RetryStartsFresh(t *testing.T) {
	s, api := started(t, 1)
	api.result = &Result{}
	require.NoError(t, s.SelectOption(2))
	require.NoError(t, s.Finish(context.Background(), api))

	next := s.Retry()
	assert.Equal(t, PhaseIntro, next.Phase())
	assert.Zero(t, next.AttemptID())
	assert.Nil(t, next.AnswerFor(100))
	assert.Zero(t, next.Elapsed())

	api.attemptID = 43
	require.NoError(t, next.Start(context.Background(), api))
	assert.Equal(t, int64(43), next.AttemptID())
	assert.Equal(t, 2, api.startCalls)
}

func TestSession_MultiQuestionExercise(t *testing.T) {
	q := testQuiz(1)
	q.Exercises[0].Content = exercise.MultiQCM{Questions: []exercise.QCMQuestion{
		{Question: "a", Options: []string{"x", "y"}},
		{Question: "b", Options: []string{"x", "y"}},
	}}
	api := &fakeAPI{attemptID: 1, result: &Result{}}
	s := NewSession(q)
	require.NoError(t, s.Start(context.Background(), api))

	require.NoError(t, s.SelectSubOption(1, 1))
	answered, _ := s.Progress()
	assert.Zero(t, answered)

	require.NoError(t, s.SelectSubOption(0, 0))
	answered, _ = s.Progress()
	assert.Equal(t, 1, answered)

	require.NoError(t, s.Finish(context.Background(), api))
	assert.Equal(t, []int{0, 1}, api.submitted.Answers["100"])
}

func TestSession_Remaining(t *testing.T) {
	q := testQuiz(1)
	limit := 1
	q.TimeLimit = &limit
	s := NewSession(q)
	require.NoError(t, s.Start(context.Background(), &fakeAPI{attemptID: 1}))
	s.Tick()

	left, ok := s.Remaining()
	assert.True(t, ok)
	assert.Equal(t, 59, int(left.Seconds()))
}

func TestQuiz_NullExercisesDropped(t *testing.T) {
	var q Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "exercises": [null, {"id": 5, "exercise_type": "qcm", "content": {"question": "?", "options": ["a", "b"]}}, null]}`), &q))
	require.Equal(t, 1, q.Len())
	assert.Equal(t, int64(5), q.Exercises[0].ID)

	var empty Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "exercises": [null]}`), &empty))
	s := NewSession(&empty)
	assert.ErrorIs(t, s.Start(context.Background(), &fakeAPI{attemptID: 1}), ErrEmpty)
	assert.Equal(t, PhaseIntro, s.Phase())
}

func TestSession_NilQuestionsSkipped(t *testing.T) {
	q := testQuiz(2)
	q.Exercises = append([]*exercise.Exercise{nil}, q.Exercises...)

	s := NewSession(q)
	require.NoError(t, s.Start(context.Background(), &fakeAPI{attemptID: 3}))
	answered, total := s.Progress()
	assert.Equal(t, 0, answered)
	assert.Equal(t, 2, total)
	assert.Equal(t, int64(100), s.Current().ID)
	assert.Len(t, q.Exercises, 3, "caller's quiz is left alone")
}
