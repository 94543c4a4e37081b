package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/router"
	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	logger zerolog.Logger
	width  int
	height int
}

// NewAppModel creates the root model showing initial. status is shown on
// the right of the header, typically the signed-in user or the API host.
func NewAppModel(initial screen.Screen, status string, logger zerolog.Logger) AppModel {
	return AppModel{
		router: router.New(initial),
		status: status,
		logger: logger,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}

	case router.PushScreenMsg:
		m.logger.Debug().Str("screen", msg.Screen.Title()).Msg("push")
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quitter"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Échap", Description: "Retour"},
			{Key: "Ctrl+C", Description: "Quitter"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Naviguer"},
		{Key: "Entrée", Description: "Choisir"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

// Run starts the Bubble Tea program on initial and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, initial screen.Screen, status string, logger zerolog.Logger) error {
	m := NewAppModel(initial, status, logger)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	m.router.CloseAll()
	if err != nil {
		logger.Error().Err(err).Msg("program exited")
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
