// Package chat is the AI tutor conversation screen.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/tutor"
	"github.com/tutorat/tutorat/internal/ui/components"
	"github.com/tutorat/tutorat/internal/ui/layout"
	"github.com/tutorat/tutorat/internal/ui/theme"
)

// replyMsg carries the tutor's answer to the pending message.
type replyMsg struct {
	owner *Screen
	Reply string
	Err   error
}

// Screen shows a tutor.Conversation. The conversation outlives the
// screen, so leaving and coming back keeps the thread.
type Screen struct {
	deps   screen.Deps
	conv   *tutor.Conversation
	input  components.TextInput
	scroll int // lines scrolled up from the bottom
	notice string

	ctx    context.Context
	cancel context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates the chat screen for deps.Conversation.
func New(deps screen.Deps) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		deps:   deps,
		conv:   deps.Conversation,
		input:  components.NewTextInput("Écris ta question...", false, 2000),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Screen) Init() tea.Cmd {
	s.conv.Open()
	return s.input.Init()
}

func (s *Screen) Title() string {
	return "Tuteur IA"
}

// Close hides the conversation and abandons a pending reply, which would
// otherwise leave the conversation busy.
func (s *Screen) Close() {
	s.cancel()
	if s.conv.Loading() {
		s.conv.Receive(context.Background(), "", context.Canceled)
	}
	s.conv.Close()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Entrée", Description: "Envoyer"},
		{Key: "PgUp/PgDn", Description: "Défiler"},
		{Key: "Ctrl+N", Description: "Nouvelle discussion"},
		{Key: "Échap", Description: "Retour"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		if msg.owner != s {
			return s, nil
		}
		s.conv.Receive(context.Background(), msg.Reply, msg.Err)
		if msg.Err != nil {
			s.deps.Logger.Warn().Err(msg.Err).Msg("tutor reply")
		}
		s.scroll = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "pgup":
			s.scroll += 5
			return s, nil
		case "pgdown":
			s.scroll = max(0, s.scroll-5)
			return s, nil
		case "ctrl+n":
			if err := s.conv.Reset(); err != nil {
				s.notice = "Attends la réponse avant de recommencer."
			} else {
				s.notice = ""
				s.scroll = 0
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) send() tea.Cmd {
	history, err := s.conv.BeginSend(s.ctx, s.input.Value())
	if err != nil {
		if errors.Is(err, tutor.ErrBusy) {
			s.notice = "Le tuteur répond encore..."
		}
		return nil
	}
	s.notice = ""
	s.scroll = 0
	s.input.Clear()

	ctx, backend := s.ctx, s.conv.Backend()
	return func() tea.Msg {
		reply, err := backend.Chat(ctx, history)
		return replyMsg{owner: s, Reply: reply, Err: err}
	}
}

func (s *Screen) View(width, height int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	var footer strings.Builder
	if s.conv.Loading() {
		footer.WriteString(theme.Dim.Render("Le tuteur écrit..."))
		footer.WriteString("\n")
	}
	if s.notice != "" {
		footer.WriteString(theme.Hint.Render(s.notice))
		footer.WriteString("\n")
	}
	footer.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	footer.WriteString("\n")
	footer.WriteString("> " + s.input.View())
	footerStr := footer.String()

	lines := s.transcript(inner)
	avail := height - lipgloss.Height(footerStr) - 1
	if avail < 1 {
		avail = 1
	}
	maxScroll := max(0, len(lines)-avail)
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	end := len(lines) - s.scroll
	start := max(0, end-avail)
	visible := lines[start:end]

	pad := avail - len(visible)
	body := strings.Repeat("\n", max(0, pad)) + strings.Join(visible, "\n")
	return lipgloss.NewStyle().Padding(0, 2).Render(body + "\n" + footerStr)
}

// transcript renders the conversation as lines, oldest first.
func (s *Screen) transcript(width int) []string {
	msgs := s.conv.Messages()
	if len(msgs) == 0 {
		return strings.Split(s.bubble(tutor.Message{Role: tutor.RoleAssistant, Content: tutor.Greeting}, width), "\n")
	}

	var lines []string
	for _, m := range msgs {
		lines = append(lines, strings.Split(s.bubble(m, width), "\n")...)
		lines = append(lines, "")
	}
	return lines
}

func (s *Screen) bubble(m tutor.Message, width int) string {
	bw := width * 3 / 4
	r := s.deps.Render()

	switch m.Role {
	case tutor.RoleUser:
		b := theme.Bubble.MaxWidth(bw).
			Background(theme.Primary).
			Foreground(theme.Text).
			Render(m.Content)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, b)
	case tutor.RoleSystem:
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.ErrorText.Render(m.Content))
	}
	label := theme.Dim.Render("Tuteur")
	if !m.At.IsZero() {
		label += theme.Dim.Render(fmt.Sprintf(" · %s", m.At.Local().Format("15:04")))
	}
	body := theme.Bubble.Width(bw).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(r.String(m.Content))
	return label + "\n" + body
}
