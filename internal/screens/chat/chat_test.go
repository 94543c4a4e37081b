package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/screen"
	"github.com/tutorat/tutorat/internal/tutor"
)

type mockBackend struct {
	reply   string
	err     error
	history [][]tutor.Message
}

func (m *mockBackend) Chat(_ context.Context, h []tutor.Message) (string, error) {
	m.history = append(m.history, h)
	return m.reply, m.err
}

func (m *mockBackend) GenerateExercise(context.Context, tutor.GenerateParams) (*tutor.Draft, error) {
	return nil, errors.New("unused")
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testScreen(b *mockBackend) *Screen {
	conv := tutor.NewConversation(b)
	s := New(screen.Deps{Conversation: conv, Logger: zerolog.Nop()})
	s.Init()
	return s
}

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestScreen_Greeting(t *testing.T) {
	s := testScreen(&mockBackend{})
	if !s.conv.IsOpen() {
		t.Error("expected the conversation to open with the screen")
	}
	if !strings.Contains(s.View(80, 20), "tuteur IA") {
		t.Error("expected the greeting in an empty conversation")
	}
}

func TestScreen_SendAndReceive(t *testing.T) {
	b := &mockBackend{reply: "Une fraction $\\frac{1}{2}$ est une moitié."}
	s := testScreen(b)

	typeText(s, "fraction ?")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if !s.conv.Loading() || s.input.Value() != "" {
		t.Error("expected a pending send with a cleared input")
	}

	// A second message waits for the reply.
	typeText(s, "encore")
	if _, again := s.Update(specialKey(tea.KeyEnter)); again != nil {
		t.Error("expected no second request while waiting")
	}

	s.Update(cmd())
	if s.conv.Loading() {
		t.Error("expected the reply to end the pending send")
	}
	msgs := s.conv.Messages()
	if len(msgs) != 2 || msgs[1].Role != tutor.RoleAssistant {
		t.Fatalf("messages = %+v", msgs)
	}
	view := s.View(80, 30)
	if !strings.Contains(view, "1/2") || strings.Contains(view, "\\frac") {
		t.Errorf("expected the reply's math to be rendered:\n%s", view)
	}
}

func TestScreen_ErrorBecomesNote(t *testing.T) {
	s := testScreen(&mockBackend{err: errors.New("offline")})
	typeText(s, "bonjour")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())

	if !strings.Contains(s.View(80, 20), "Désolé") {
		t.Error("expected the fallback note")
	}
}

func TestScreen_EmptyInputIgnored(t *testing.T) {
	s := testScreen(&mockBackend{})
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("expected blank input to be ignored")
	}
}

func TestScreen_ReplyForClosedScreenDropped(t *testing.T) {
	b := &mockBackend{reply: "ok"}
	s := testScreen(b)
	typeText(s, "question")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	msg := cmd()

	s.Close()
	if s.conv.Loading() || s.conv.IsOpen() {
		t.Error("expected close to settle the conversation")
	}

	// The conversation is usable again from a new screen.
	next := New(screen.Deps{Conversation: s.conv, Logger: zerolog.Nop()})
	next.Init()
	next.Update(msg)
	for _, m := range next.conv.Messages() {
		if m.Content == "ok" {
			t.Error("late reply from the closed screen was applied")
		}
	}
}

func TestScreen_NewConversation(t *testing.T) {
	s := testScreen(&mockBackend{reply: "ok"})
	typeText(s, "salut")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())

	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	if len(s.conv.Messages()) != 0 {
		t.Error("expected ctrl+n to start a new conversation")
	}
}
