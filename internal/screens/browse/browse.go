// Package browse lists exercises or quizzes and opens the one picked.
package browse

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/practice"
	"github.com/tutorat/tutorat/internal/screens/quizrun"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

type item struct {
	id    int64
	label string
}

type loadedMsg struct {
	owner *Screen
	Items []item
	Err   error
}

// Screen is a list of exercises or quizzes.
type Screen struct {
	deps   screen.Deps
	title  string
	fetch  func(ctx context.Context) ([]item, error)
	open   func(id int64) screen.Screen
	menu   components.Menu
	items  []item
	loaded bool
	err    error

	ctx    context.Context
	cancel context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// NewExercises lists the exercises matching f.
func NewExercises(deps screen.Deps, f api.ExerciseFilter) *Screen {
	s := newScreen(deps, "Exercices")
	s.fetch = func(ctx context.Context) ([]item, error) {
		list, err := deps.API.ListExercises(ctx, f)
		if err != nil {
			return nil, err
		}
		items := make([]item, 0, len(list))
		for _, ex := range list {
			label := ex.Title
			if ex.Difficulty != "" {
				label += "  · " + ex.Difficulty.Label()
			}
			if ex.SubjectName != "" {
				label += "  · " + ex.SubjectName
			}
			if ex.Level != "" {
				label += "  · " + tutor.LevelLabel(ex.Level)
			}
			items = append(items, item{id: ex.ID, label: label})
		}
		return items, nil
	}
	s.open = func(id int64) screen.Screen { return practice.New(deps, id) }
	return s
}

// NewQuizzes lists the quizzes matching f.
func NewQuizzes(deps screen.Deps, f api.QuizFilter) *Screen {
	s := newScreen(deps, "Quiz")
	s.fetch = func(ctx context.Context) ([]item, error) {
		list, err := deps.API.ListQuizzes(ctx, f)
		if err != nil {
			return nil, err
		}
		items := make([]item, 0, len(list))
		for _, q := range list {
			n := q.ExerciseCount
			if n == 0 {
				n = q.Len()
			}
			label := fmt.Sprintf("%s  · %d questions", q.Title, n)
			if q.TimeLimit != nil && *q.TimeLimit > 0 {
				label += fmt.Sprintf("  · %d min", *q.TimeLimit)
			}
			items = append(items, item{id: q.ID, label: label})
		}
		return items, nil
	}
	s.open = func(id int64) screen.Screen { return quizrun.New(deps, id) }
	return s
}

func newScreen(deps screen.Deps, title string) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{deps: deps, title: title, ctx: ctx, cancel: cancel}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

func (s *Screen) Title() string {
	return s.title
}

// Close cancels a pending fetch.
func (s *Screen) Close() {
	s.cancel()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.err != nil {
		return []layout.KeyHint{{Key: "r", Description: "Réessayer"}, {Key: "Échap", Description: "Retour"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Entrée", Description: "Ouvrir"},
		{Key: "r", Description: "Actualiser"},
		{Key: "Échap", Description: "Retour"},
	}
}

func (s *Screen) load() tea.Cmd {
	ctx, fetch := s.ctx, s.fetch
	return func() tea.Msg {
		items, err := fetch(ctx)
		return loadedMsg{owner: s, Items: items, Err: err}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		s.err = msg.Err
		if msg.Err != nil {
			s.deps.Logger.Error().Err(msg.Err).Str("list", s.title).Msg("load list")
			return s, nil
		}
		s.setItems(msg.Items)
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "r" && s.loaded {
			s.loaded = false
			s.err = nil
			return s, s.load()
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) setItems(items []item) {
	s.items = items
	menuItems := make([]components.MenuItem, len(items))
	for i, it := range items {
		id := it.id
		menuItems[i] = components.MenuItem{
			Label: it.label,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: s.open(id)}
				}
			},
		}
	}
	s.menu = components.NewMenu(menuItems)
}

func (s *Screen) View(width, height int) string {
	switch {
	case s.err != nil:
		return components.RenderError(width, "Chargement impossible : "+s.err.Error(), true)
	case !s.loaded:
		return components.RenderLoading(width, "Chargement")
	case len(s.items) == 0:
		return components.RenderEmpty(width, "Rien à afficher pour l'instant.")
	}

	// Keep the selection on screen.
	list := s.menu.View()
	lines := lipgloss.Height(list)
	if avail := height - 2; lines > avail && avail > 0 {
		start := max(0, s.menu.Selected-avail/2)
		end := min(len(s.items), start+avail)
		sub := components.Menu{Items: s.menu.Items[start:end], Selected: s.menu.Selected - start}
		list = sub.View()
	}
	return "\n" + lipgloss.NewStyle().Foreground(theme.Text).Render(list)
}
