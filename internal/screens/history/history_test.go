package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/quizrun"
	"github.com/tutorat/tutorat/internal/store"
)

type fakeRepo struct {
	store.EventRepo
	attempts []store.Attempt
	err      error
	opts     store.QueryOpts
}

func (f *fakeRepo) QueryAttempts(_ context.Context, opts store.QueryOpts) ([]store.Attempt, error) {
	f.opts = opts
	return f.attempts, f.err
}

func sampleAttempts() []store.Attempt {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	return []store.Attempt{
		{Kind: "quiz", RefID: 4, Title: "Révisions fractions", Score: 8, MaxScore: 10, Success: true, TimeSpentSecs: 312, Timestamp: ts},
		{Kind: "exercise", RefID: 12, Title: "Passé composé", Score: 0, MaxScore: 10, HintsUsed: 2, TimeSpentSecs: 45, Timestamp: ts},
	}
}

func load(s *HistoryScreen) {
	s.Update(s.Init()())
}

func TestHistoryScreen_Lists(t *testing.T) {
	repo := &fakeRepo{attempts: sampleAttempts()}
	s := New(screen.Deps{History: repo, Logger: zerolog.Nop()})
	load(s)

	if repo.opts.Limit != pageSize {
		t.Errorf("limit = %d, want %d", repo.opts.Limit, pageSize)
	}
	view := s.View(120, 30)
	for _, want := range []string{"14/03/2026 09:30", "Révisions fractions", "8/10", "5:12", "Passé composé", "0:45"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_Details(t *testing.T) {
	s := New(screen.Deps{History: &fakeRepo{attempts: sampleAttempts()}, Logger: zerolog.Nop()})
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view := s.View(120, 30)
	if !strings.Contains(view, "exercice n°12") || !strings.Contains(view, "2 indices") {
		t.Errorf("expected expanded details, got:\n%s", view)
	}
	if strings.Contains(view, "quiz n°4") {
		t.Error("only the selected row expands")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(screen.Deps{History: &fakeRepo{}, Logger: zerolog.Nop()})
	if !strings.Contains(s.View(80, 20), "Chargement") {
		t.Error("expected the loading view before the first load")
	}
	load(s)
	if !strings.Contains(s.View(80, 20), "Aucune tentative") {
		t.Error("expected the empty view")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(screen.Deps{History: &fakeRepo{err: errors.New("database is locked")}, Logger: zerolog.Nop()})
	load(s)
	if !strings.Contains(s.View(80, 20), "database is locked") {
		t.Error("expected the error message")
	}
}

func TestHistoryScreen_ReopenNeedsAPI(t *testing.T) {
	s := New(screen.Deps{History: &fakeRepo{attempts: sampleAttempts()}, Logger: zerolog.Nop()})
	load(s)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'o', Text: "o"}); cmd != nil {
		t.Error("reopen without an API client should do nothing")
	}
	for _, h := range s.KeyHints() {
		if h.Key == "o" {
			t.Error("reopen hint shown without an API client")
		}
	}
}

type stubAPI struct{ screen.API }

func TestHistoryScreen_ReopenQuiz(t *testing.T) {
	s := New(screen.Deps{API: stubAPI{}, History: &fakeRepo{attempts: sampleAttempts()}, Logger: zerolog.Nop()})
	load(s)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected a push")
	}
	if _, ok := push.Screen.(*quizrun.Screen); !ok {
		t.Errorf("pushed %T, want the quiz screen", push.Screen)
	}
}
