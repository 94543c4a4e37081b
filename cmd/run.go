package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/app"
	"github.com/tutorat/tutorat/internal/config"
	"github.com/tutorat/tutorat/internal/content"
	"github.com/tutorat/tutorat/internal/llm"
	"github.com/tutorat/tutorat/internal/logging"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/tutor"
)

// env holds what a command opened. Close releases it.
type env struct {
	store  *store.Store
	client *api.Client
	tokens *api.TokenStore

	backend    tutor.Backend
	backendErr error
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}
}

func openStore() (*store.Store, error) {
	dbPath, err := store.DefaultDBPath(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func newClient() (*api.Client, *api.TokenStore, error) {
	tokenPath, err := cfg.TokenPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve token path: %w", err)
	}
	tokens := api.NewTokenStore(tokenPath, cfg.Token.Value)
	c, err := api.New(api.Options{
		BaseURL:    cfg.API.URL,
		AuthScheme: cfg.API.AuthScheme,
		Timeout:    cfg.API.Timeout,
		Tokens:     tokens,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, tokens, nil
}

// newBackend picks the tutor backend. The local one records its LLM calls
// through recorder.
func newBackend(ctx context.Context, client *api.Client, recorder llm.Recorder) (tutor.Backend, error) {
	if cfg.AI.Backend != config.BackendLocal {
		return tutor.NewRemote(client), nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, recorder, logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return tutor.NewLocal(provider), nil
}

// openEnv opens the store and the API client and builds the tutor
// backend. A backend that cannot be built is not fatal; AI features are
// then unavailable and backendErr says why.
func openEnv(ctx context.Context) (*env, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	client, tokens, err := newClient()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	e := &env{store: st, client: client, tokens: tokens}
	e.backend, e.backendErr = newBackend(ctx, client, st.EventRepo())
	if e.backendErr != nil {
		logger.Warn().Err(e.backendErr).Msg("AI features will be unavailable")
	}
	return e, nil
}

func (e *env) deps() screen.Deps {
	history := e.store.EventRepo()
	d := screen.Deps{
		API:      e.client,
		History:  history,
		Renderer: content.Default(),
		Logger:   logger,
	}
	if e.backend != nil {
		d.Conversation = tutor.NewConversation(e.backend,
			tutor.WithRecorder(history),
			tutor.WithLogger(logging.Component("tutor")))
		d.Generator = tutor.NewGenerator(e.backend, e.client, logging.Component("generator"))
	}
	return d
}

// status is shown in the header: the platform host and whether a token
// is available.
func (e *env) status() string {
	host := e.client.BaseURL()
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}
	if e.client.Authenticated() {
		return host + " · connecté"
	}
	return host + " · non connecté"
}

// runTUI opens the environment, moves logging to the log file and runs
// the terminal UI on the screen build returns.
func runTUI(cmd *cobra.Command, build func(e *env, deps screen.Deps) (screen.Screen, error)) error {
	logPath, err := cfg.LogPath()
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	f, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if logger, err = logging.Init(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: f}); err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	deps := e.deps()
	initial, err := build(e, deps)
	if err != nil {
		return err
	}
	logger.Info().Str("screen", initial.Title()).Str("api", e.client.BaseURL()).Msg("starting")
	return app.Run(ctx, initial, e.status(), logger)
}

// requireTutor fails when the AI backend could not be built.
func (e *env) requireTutor() error {
	if e.backend != nil {
		return nil
	}
	err := e.backendErr
	if err == nil {
		err = errors.New("no backend")
	}
	return fmt.Errorf("AI tutor unavailable: %w", err)
}
