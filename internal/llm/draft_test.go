package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorat/tutorat/internal/llm"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/tutor"
)

const fractionsDraft = `{
	"title": "Les fractions",
	"description": "Choisis la bonne réponse",
	"type": "qcm",
	"difficulty": "medium",
	"content": {"questions": [
		{"question": "Combien vaut $\\frac{1}{2} + \\frac{1}{4}$ ?", "options": ["$\\frac{3}{4}$", "$\\frac{2}{6}$"], "correct_option": 0}
	]},
	"correct_answers": [0],
	"explanation": "On met au même dénominateur.",
	"hints": ["Pense au dénominateur commun"],
	"points": 10
}`

type events struct{ rows []store.LLMRequestEventData }

func (e *events) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	e.rows = append(e.rows, d)
	return nil
}

func TestQCMDraftSchema(t *testing.T) {
	require.NoError(t, llm.ValidateJSON(tutor.QCMDraftSchema, json.RawMessage(fractionsDraft)))

	tests := []struct {
		name string
		edit func(map[string]any)
	}{
		{"single option", func(d map[string]any) {
			d["content"] = map[string]any{"questions": []any{map[string]any{"question": "?", "options": []any{"a"}, "correct_option": 0}}}
		}},
		{"no questions", func(d map[string]any) { d["content"] = map[string]any{"questions": []any{}} }},
		{"extra field", func(d map[string]any) { d["lesson"] = "fractions" }},
		{"classic content", func(d map[string]any) {
			d["content"] = map[string]any{"text": "Conjugue", "questions": []any{"manger"}}
		}},
		{"missing hints", func(d map[string]any) { delete(d, "hints") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d map[string]any
			require.NoError(t, json.Unmarshal([]byte(fractionsDraft), &d))
			tt.edit(d)
			raw, err := json.Marshal(d)
			require.NoError(t, err)

			var invalid *llm.ErrInvalidResponse
			assert.ErrorAs(t, llm.ValidateJSON(tutor.QCMDraftSchema, raw), &invalid)
		})
	}
}

func TestDraftThroughDecorators(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
		llm.MockResponse{Content: json.RawMessage("```json\n" + fractionsDraft + "\n```"), Usage: llm.Usage{InputTokens: 900, OutputTokens: 350}},
	)
	rec := &events{}
	p := llm.WithRetry(
		llm.WithLogging(mock, llm.ProviderGroq, rec, zerolog.Nop()),
		llm.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2},
		zerolog.Nop(),
	)

	ctx := llm.WithPurpose(context.Background(), llm.PurposeExerciseGen)
	resp, err := p.Generate(ctx, llm.Request{
		System:   "Tu es un générateur d'exercices scolaires.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Génère un exercice de Mathématiques pour un niveau cm2 sur le thème 'fractions'."}},
		Schema:   tutor.QCMDraftSchema,
	})
	require.NoError(t, err)

	var draft struct {
		Title string `json:"title"`
	}
	require.NoError(t, llm.DecodeJSON(tutor.QCMDraftSchema, resp.Content, &draft))
	assert.Equal(t, "Les fractions", draft.Title)

	assert.Equal(t, []string{llm.PurposeExerciseGen, llm.PurposeExerciseGen}, mock.Purposes)
	require.Len(t, rec.rows, 2, "both attempts are recorded")
	assert.False(t, rec.rows[0].Success)
	assert.True(t, rec.rows[1].Success)
	assert.Equal(t, llm.PurposeExerciseGen, rec.rows[1].Purpose)
	assert.Equal(t, 350, rec.rows[1].OutputTokens)
	assert.Contains(t, rec.rows[1].RequestBody, "[schema: qcm-exercise-draft]")
}
