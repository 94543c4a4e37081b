package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
	"github.com/tutorat/tutorat/internal/llm"
)

const (
	temperature    = 0.7
	chatMaxTokens  = 1024
	draftMaxTokens = 2048
)

// ErrInvalidDraft is returned when a generated exercise is inconsistent,
// for example a correct option that is not among the options.
var ErrInvalidDraft = errors.New("invalid exercise draft")

// Local talks to an LLM provider directly, with the same prompts the
// platform uses server-side.
type Local struct {
	provider llm.Provider
}

// NewLocal returns a backend on top of p.
func NewLocal(p llm.Provider) *Local {
	return &Local{provider: p}
}

func (l *Local) Chat(ctx context.Context, history []Message) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeChat)

	msgs := sendable(history)
	if len(msgs) == 0 {
		return "", errors.New("chat: no messages")
	}
	req := llm.Request{
		System:      chatSystemPrompt,
		Messages:    make([]llm.Message, len(msgs)),
		MaxTokens:   chatMaxTokens,
		Temperature: temperature,
	}
	for i, m := range msgs {
		req.Messages[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}

	resp, err := l.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return resp.Text(), nil
}

func (l *Local) GenerateExercise(ctx context.Context, p GenerateParams) (*Draft, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExerciseGen)

	schema := draftSchema(p.Type)
	resp, err := l.provider.Generate(ctx, llm.Request{
		System:      generatorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGeneratePrompt(p)}},
		Schema:      schema,
		MaxTokens:   draftMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := llm.DecodeJSON(schema, resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}
	ex, err := api.DecodeDraft(raw, p.Type)
	if err != nil {
		return nil, err
	}
	if ex.SubjectName == "" {
		ex.SubjectName = p.Subject
	}
	if ex.Level == "" {
		ex.Level = p.Level
	}
	if err := checkDraft(ex); err != nil {
		return nil, err
	}
	return &Draft{Exercise: ex, Params: p}, nil
}

// checkDraft catches what a schema cannot express.
func checkDraft(ex *exercise.Exercise) error {
	switch c := ex.Content.(type) {
	case exercise.MultiQCM:
		for i, q := range c.Questions {
			if q.CorrectOption != nil && (*q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options)) {
				return fmt.Errorf("%w: question %d has correct option %d of %d", ErrInvalidDraft, i+1, *q.CorrectOption, len(q.Options))
			}
		}
	case exercise.SingleQCM:
		if len(c.Options) < 2 {
			return fmt.Errorf("%w: fewer than two options", ErrInvalidDraft)
		}
	case exercise.Classic:
		var answers []json.RawMessage
		if err := json.Unmarshal(ex.CorrectAnswers, &answers); err == nil && len(answers) != len(c.Questions) {
			return fmt.Errorf("%w: %d answers for %d questions", ErrInvalidDraft, len(answers), len(c.Questions))
		}
	case nil:
		return fmt.Errorf("%w: no content", ErrInvalidDraft)
	}
	return nil
}
