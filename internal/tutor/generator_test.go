package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/llm"
)

type fakeAPI struct {
	chatReply string
	chat      []api.ChatMessage

	generated  *exercise.Exercise
	genRequest api.GenerateRequest

	subjects    []api.Subject
	subjectsErr error
	created     []api.CreateExerciseRequest
	createErr   error
}

func (f *fakeAPI) Chat(_ context.Context, msgs []api.ChatMessage) (string, error) {
	f.chat = msgs
	return f.chatReply, nil
}

func (f *fakeAPI) GenerateExercise(_ context.Context, req api.GenerateRequest) (*exercise.Exercise, error) {
	f.genRequest = req
	return f.generated, nil
}

func (f *fakeAPI) ListSubjects(context.Context) ([]api.Subject, error) {
	return f.subjects, f.subjectsErr
}

func (f *fakeAPI) CreateExercise(_ context.Context, req api.CreateExerciseRequest) (*exercise.Exercise, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	content, _ := exercise.DecodeContent(req.ExerciseType, req.ContentJSON)
	return &exercise.Exercise{ID: 100 + int64(len(f.created)), Title: req.Title, Type: req.ExerciseType, Content: content}, nil
}

func sampleDraft() *Draft {
	return &Draft{
		Exercise: &exercise.Exercise{
			Title:       "Addition",
			SubjectName: "Mathématiques",
			Content:     exercise.SingleQCM{Question: "2+2 ?", Options: []string{"3", "4"}},
			Hints:       []string{"Compte"},
		},
		Params: GenerateParams{Subject: "Mathématiques", Level: "cp2", Topic: "addition"},
	}
}

func TestRemote_GenerateExercise(t *testing.T) {
	f := &fakeAPI{generated: &exercise.Exercise{Title: "Draft", Type: exercise.TypeClassic}}
	r := NewRemote(f)

	d, err := r.GenerateExercise(context.Background(), GenerateParams{
		Subject: "Histoire", Level: "cm1", Topic: "Rome", Type: exercise.TypeClassic,
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft", d.Exercise.Title)
	assert.Equal(t, api.GenerateRequest{
		Subject: "Histoire", Level: "cm1", Topic: "Rome",
		Difficulty: exercise.DifficultyMedium, ExerciseType: exercise.TypeClassic, Language: "fr",
	}, f.genRequest)
}

func TestGenerator_Generate(t *testing.T) {
	b := &fakeBackend{draft: sampleDraft()}
	g := NewGenerator(b, &fakeAPI{}, zerolog.Nop())

	d, err := g.Generate(context.Background(), GenerateParams{Subject: "Mathématiques", Level: "cp2", Topic: "addition"})
	require.NoError(t, err)
	assert.Equal(t, "Addition", d.Exercise.Title)
	require.Len(t, b.generate, 1)
	assert.Equal(t, exercise.TypeQCM, b.generate[0].Type)

	_, err = g.Generate(context.Background(), GenerateParams{Subject: "Mathématiques"})
	assert.ErrorIs(t, err, ErrMissingParams)
	assert.Len(t, b.generate, 1, "invalid params never reach the backend")
}

func TestGenerator_GenerateEmptyDraft(t *testing.T) {
	g := NewGenerator(&fakeBackend{}, &fakeAPI{}, zerolog.Nop())
	_, err := g.Generate(context.Background(), GenerateParams{Subject: "a", Level: "b", Topic: "c"})
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestGenerator_SaveAppliesDefaults(t *testing.T) {
	f := &fakeAPI{subjects: []api.Subject{
		{ID: 1, Name: "Français", Slug: "francais"},
		{ID: 2, Name: "Mathématiques", Slug: "mathematiques"},
	}}
	g := NewGenerator(&fakeBackend{}, f, zerolog.Nop())

	d := sampleDraft()
	saved, err := g.Save(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(101), saved.ID)

	require.Len(t, f.created, 1)
	req := f.created[0]
	assert.Equal(t, int64(2), req.Subject)
	assert.Equal(t, exercise.DifficultyMedium, req.Difficulty)
	assert.Equal(t, exercise.TypeQCM, req.ExerciseType)
	assert.Equal(t, 10, req.Points)
	assert.Equal(t, "cp2", req.Level)
	assert.True(t, req.IsAIGenerated)
	assert.Equal(t, []string{"Compte"}, req.Hints)
	assert.JSONEq(t, `{"question":"2+2 ?","options":["3","4"]}`, string(req.ContentJSON))

	assert.Zero(t, d.Exercise.Subject, "the draft itself is not modified")
}

func TestGenerator_SaveMatchesSlug(t *testing.T) {
	f := &fakeAPI{subjects: []api.Subject{{ID: 7, Name: "Sciences", Slug: "sciences-vie-terre"}}}
	g := NewGenerator(&fakeBackend{}, f, zerolog.Nop())

	d := sampleDraft()
	d.Exercise.SubjectName = "sciences-vie-terre"
	d.Exercise.Points = 20
	d.Exercise.Difficulty = exercise.DifficultyHard

	_, err := g.Save(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.created[0].Subject)
	assert.Equal(t, 20, f.created[0].Points)
	assert.Equal(t, exercise.DifficultyHard, f.created[0].Difficulty)
}

func TestGenerator_SaveUnknownSubject(t *testing.T) {
	f := &fakeAPI{subjects: []api.Subject{{ID: 1, Name: "Français"}}}
	g := NewGenerator(&fakeBackend{}, f, zerolog.Nop())

	_, err := g.Save(context.Background(), sampleDraft())
	assert.ErrorIs(t, err, ErrUnknownSubject)
	assert.Empty(t, f.created)
}

func TestGenerator_SaveErrors(t *testing.T) {
	g := NewGenerator(&fakeBackend{}, &fakeAPI{subjectsErr: errors.New("offline")}, zerolog.Nop())
	_, err := g.Save(context.Background(), sampleDraft())
	assert.ErrorContains(t, err, "offline")

	_, err = g.Save(context.Background(), nil)
	assert.Error(t, err)

	withID := sampleDraft()
	withID.Exercise.Subject = 3
	failing := &fakeAPI{createErr: &api.StatusError{Op: "create exercise", Code: 400, Message: "title: required"}}
	_, err = NewGenerator(&fakeBackend{}, failing, zerolog.Nop()).Save(context.Background(), withID)
	var se *api.StatusError
	assert.ErrorAs(t, err, &se)
}

func TestDraftSchemas(t *testing.T) {
	require.NoError(t, llm.ValidateJSON(QCMDraftSchema, json.RawMessage(qcmDraftJSON)))

	err := llm.ValidateJSON(QCMDraftSchema, json.RawMessage(`{"title": "x"}`))
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)

	assert.Equal(t, ClassicDraftSchema, draftSchema(exercise.TypeClassic))
	assert.Equal(t, QCMDraftSchema, draftSchema(exercise.TypeQCM))
}
