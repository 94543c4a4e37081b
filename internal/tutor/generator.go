package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/exercise"
)

const defaultPoints = 10

// ErrUnknownSubject is returned by Save when the draft's subject matches
// no subject of the platform.
var ErrUnknownSubject = errors.New("unknown subject")

// Catalog is the part of the API client the generator saves through.
type Catalog interface {
	ListSubjects(ctx context.Context) ([]api.Subject, error)
	CreateExercise(ctx context.Context, req api.CreateExerciseRequest) (*exercise.Exercise, error)
}

// Generator drafts exercises and saves the ones the user keeps.
// Generation and saving are separate calls; nothing is stored until Save.
type Generator struct {
	backend Backend
	catalog Catalog
	logger  zerolog.Logger
}

// NewGenerator returns a generator drafting with b and saving to c.
func NewGenerator(b Backend, c Catalog, logger zerolog.Logger) *Generator {
	return &Generator{backend: b, catalog: c, logger: logger}
}

// Generate drafts a new exercise.
func (g *Generator) Generate(ctx context.Context, p GenerateParams) (*Draft, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	d, err := g.backend.GenerateExercise(ctx, p)
	if err != nil {
		return nil, err
	}
	if d == nil || d.Exercise == nil {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidDraft)
	}
	g.logger.Debug().
		Str("subject", p.Subject).
		Str("level", p.Level).
		Str("type", string(d.Exercise.Type)).
		Msg("exercise drafted")
	return d, nil
}

// Save creates the drafted exercise on the platform. The subject name is
// resolved to its id and unset difficulty, type and points get defaults.
func (g *Generator) Save(ctx context.Context, d *Draft) (*exercise.Exercise, error) {
	if d == nil || d.Exercise == nil {
		return nil, errors.New("no draft to save")
	}
	ex := *d.Exercise

	if ex.Subject == 0 {
		name := ex.SubjectName
		if name == "" {
			name = d.Params.Subject
		}
		id, err := g.resolveSubject(ctx, name)
		if err != nil {
			return nil, err
		}
		ex.Subject = id
	}
	if ex.Difficulty == "" {
		ex.Difficulty = d.Params.Difficulty
	}
	if ex.Difficulty == "" {
		ex.Difficulty = exercise.DifficultyMedium
	}
	if ex.Type == "" {
		ex.Type = exercise.TypeQCM
	}
	if ex.Points <= 0 {
		ex.Points = defaultPoints
	}
	if ex.Level == "" {
		ex.Level = d.Params.Level
	}
	ex.IsAIGenerated = true

	req, err := api.NewCreateExerciseRequest(&ex)
	if err != nil {
		return nil, err
	}
	created, err := g.catalog.CreateExercise(ctx, req)
	if err != nil {
		return nil, err
	}
	g.logger.Info().Int64("exercise_id", created.ID).Msg("generated exercise saved")
	return created, nil
}

func (g *Generator) resolveSubject(ctx context.Context, name string) (int64, error) {
	subjects, err := g.catalog.ListSubjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve subject: %w", err)
	}
	for _, s := range subjects {
		if strings.EqualFold(s.Name, name) || strings.EqualFold(s.Slug, name) {
			return s.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSubject, name)
}
