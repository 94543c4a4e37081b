// Package home is the main menu.
package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/screens/browse"
	"github.com/tutorat/tutorat/internal/screens/chat"
	"github.com/tutorat/tutorat/internal/screens/generate"
	"github.com/tutorat/tutorat/internal/screens/history"
	"github.com/tutorat/tutorat/internal/store"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/components"
)

// Options narrows what the menu entries open.
type Options struct {
	Exercises api.ExerciseFilter
	Quizzes   api.QuizFilter
	Generate  tutor.GenerateParams
}

type stats struct {
	exercises     int
	correct       int
	quizzesPassed int
}

type statsLoadedMsg struct {
	owner    *HomeScreen
	Attempts []store.Attempt
	Err      error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps       screen.Deps
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	stats      stats
	mascot     MascotVariant
	now        func() time.Time
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. Entries whose dependency is missing are
// shown disabled.
func New(deps screen.Deps, opts Options) *HomeScreen {
	h := &HomeScreen{deps: deps, disabled: make(map[int]bool), now: time.Now}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	type entry struct {
		label     string
		available bool
		action    func() tea.Cmd
	}
	entries := []entry{
		{"EXERCICES", deps.API != nil, push(func() screen.Screen { return browse.NewExercises(deps, opts.Exercises) })},
		{"QUIZ", deps.API != nil, push(func() screen.Screen { return browse.NewQuizzes(deps, opts.Quizzes) })},
		{"TUTEUR IA", deps.Conversation != nil, push(func() screen.Screen { return chat.New(deps) })},
		{"GÉNÉRER", deps.Generator != nil, push(func() screen.Screen { return generate.New(deps, opts.Generate) })},
		{"HISTORIQUE", deps.History != nil, push(func() screen.Screen { return history.New(deps) })},
		{"QUITTER", true, func() tea.Cmd { return tea.Quit }},
	}

	items := make([]components.MenuItem, len(entries))
	for i, e := range entries {
		h.menuLabels = append(h.menuLabels, e.label)
		items[i] = components.MenuItem{Label: e.label, Action: e.action, Disabled: !e.available}
		h.disabled[i] = !e.available
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.History == nil {
		return nil
	}
	repo := h.deps.History
	from := h.now().AddDate(0, 0, -7)
	return func() tea.Msg {
		attempts, err := repo.QueryAttempts(context.Background(), store.QueryOpts{From: from})
		return statsLoadedMsg{owner: h, Attempts: attempts, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.owner != h {
			return h, nil
		}
		if msg.Err != nil {
			h.deps.Logger.Warn().Err(msg.Err).Msg("load weekly stats")
			return h, nil
		}
		h.stats, h.mascot = summarize(msg.Attempts, h.now())
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// summarize counts the attempts, which come newest first.
func summarize(attempts []store.Attempt, now time.Time) (stats, MascotVariant) {
	var st stats
	for _, a := range attempts {
		switch a.Kind {
		case "exercise":
			st.exercises++
			if a.Success {
				st.correct++
			}
		case "quiz":
			if a.Success {
				st.quizzesPassed++
			}
		}
	}

	mascot := MascotIdle
	switch {
	case len(attempts) > 0 && attempts[0].Success && now.Sub(attempts[0].Timestamp) < 24*time.Hour:
		mascot = MascotCelebrating
	case len(attempts) >= 3 && !attempts[0].Success && !attempts[1].Success && !attempts[2].Success:
		mascot = MascotAlert
	}
	return st, mascot
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps
	termHeight := height + 8
	compact := termHeight < 32 || width < 100

	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if h.deps.Conversation == nil || h.deps.Generator == nil {
		sections = append(sections, renderBanner("Tuteur IA non configuré (voir tutorat --help)", cw))
	}

	if !compact {
		sections = append(sections, renderMascotBox(h.mascot, cw))
	}

	if h.deps.History != nil {
		sections = append(sections, renderStatsBar(h.stats, cw, compact))
	}

	if termHeight < 36 {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Accueil"
}
