package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/practice"
	"github.com/tutorat/tutorat/internal/screens/quizrun"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Attempts []store.Attempt
	Err      error
}

// HistoryScreen lists the attempts recorded on this machine.
type HistoryScreen struct {
	deps     screen.Deps
	attempts []store.Attempt
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.deps.History
	return func() tea.Msg {
		attempts, err := repo.QueryAttempts(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historique"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Entrée", Description: "Détails"},
		{Key: "↑↓", Description: "Naviguer"},
	}
	if s.deps.API != nil {
		hints = append(hints, layout.KeyHint{Key: "o", Description: "Refaire"})
	}
	return append(hints, layout.KeyHint{Key: "Échap", Description: "Retour"})
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.deps.Logger.Error().Err(msg.Err).Msg("load history")
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "o":
			return s, s.reopen()
		}
	}
	return s, nil
}

// reopen starts the selected exercise or quiz again.
func (s *HistoryScreen) reopen() tea.Cmd {
	if s.deps.API == nil || s.selected >= len(s.attempts) {
		return nil
	}
	a := s.attempts[s.selected]
	var next screen.Screen
	switch a.Kind {
	case "exercise":
		next = practice.New(s.deps, a.RefID)
	case "quiz":
		next = quizrun.New(s.deps, a.RefID)
	default:
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.RenderError(width, "Historique indisponible : "+s.errMsg, false)
	}
	if !s.loaded {
		return components.RenderLoading(width, "Chargement de l'historique")
	}
	if len(s.attempts) == 0 {
		return components.RenderEmpty(width, "Aucune tentative pour l'instant. À toi de jouer !")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		kind := "Exercice"
		if a.Kind == "quiz" {
			kind = "Quiz    "
		}
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !a.Success {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}

		line := fmt.Sprintf("%s%s  %s  %-28s  %d/%d  %s",
			prefix, a.Timestamp.Format("02/01/2006 15:04"), kind, truncate(a.Title, 28),
			a.Score, a.MaxScore, components.FormatClock(secs(a.TimeSpentSecs)))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)+"  "+mark))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(details(a))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func details(a store.Attempt) string {
	var parts []string
	if a.Kind == "quiz" {
		parts = append(parts, fmt.Sprintf("quiz n°%d", a.RefID))
		if a.Success {
			parts = append(parts, "réussi")
		} else {
			parts = append(parts, "non validé")
		}
	} else {
		parts = append(parts, fmt.Sprintf("exercice n°%d", a.RefID))
		switch a.HintsUsed {
		case 0:
			parts = append(parts, "sans indice")
		case 1:
			parts = append(parts, "1 indice")
		default:
			parts = append(parts, fmt.Sprintf("%d indices", a.HintsUsed))
		}
	}
	if a.MaxScore > 0 {
		parts = append(parts, fmt.Sprintf("%d %%", a.Score*100/a.MaxScore))
	}
	return "    " + strings.Join(parts, " · ")
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
