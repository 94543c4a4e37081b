package tutor

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
)

// RemoteAPI is the part of the API client the remote backend uses.
type RemoteAPI interface {
	Chat(ctx context.Context, messages []api.ChatMessage) (string, error)
	GenerateExercise(ctx context.Context, req api.GenerateRequest) (*exercise.Exercise, error)
}

// Remote delegates to the platform's ai/ endpoints.
type Remote struct {
	api RemoteAPI
}

// NewRemote returns a backend that calls the platform.
func NewRemote(c RemoteAPI) *Remote {
	return &Remote{api: c}
}

func (r *Remote) Chat(ctx context.Context, history []Message) (string, error) {
	msgs := sendable(history)
	out := make([]api.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = api.ChatMessage{Role: string(m.Role), Content: m.Content}
	}
	return r.api.Chat(ctx, out)
}

func (r *Remote) GenerateExercise(ctx context.Context, p GenerateParams) (*Draft, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var req api.GenerateRequest
	if err := copier.Copy(&req, &p); err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.ExerciseType = p.Type

	ex, err := r.api.GenerateExercise(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Draft{Exercise: ex, Params: p}, nil
}
