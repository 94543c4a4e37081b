package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/store"
)

type fakeBackend struct {
	reply    string
	err      error
	draft    *Draft
	history  [][]Message
	generate []GenerateParams
}

func (f *fakeBackend) Chat(_ context.Context, history []Message) (string, error) {
	f.history = append(f.history, history)
	return f.reply, f.err
}

func (f *fakeBackend) GenerateExercise(_ context.Context, p GenerateParams) (*Draft, error) {
	f.generate = append(f.generate, p)
	return f.draft, f.err
}

type memRecorder struct {
	rows []store.ChatMessageData
	err  error
}

func (m *memRecorder) AppendChatMessage(_ context.Context, d store.ChatMessageData) error {
	m.rows = append(m.rows, d)
	return m.err
}

func TestConversation_OpenClose(t *testing.T) {
	c := NewConversation(&fakeBackend{})
	assert.False(t, c.IsOpen())
	c.Open()
	assert.True(t, c.IsOpen())
	c.Toggle()
	assert.False(t, c.IsOpen())
	assert.NotEmpty(t, c.SessionID())
}

func TestConversation_Send(t *testing.T) {
	b := &fakeBackend{reply: "Une fraction est une partie d'un tout 🍕"}
	rec := &memRecorder{}
	c := NewConversation(b, WithRecorder(rec))

	require.NoError(t, c.Send(context.Background(), "  C'est quoi une fraction ?  "))
	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "C'est quoi une fraction ?", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.False(t, c.Loading())

	require.Len(t, rec.rows, 2)
	assert.Equal(t, c.SessionID(), rec.rows[0].SessionID)
	assert.Equal(t, "assistant", rec.rows[1].Role)
}

func TestConversation_ContextWindow(t *testing.T) {
	b := &fakeBackend{reply: "ok"}
	c := NewConversation(b)
	for i := range 8 {
		require.NoError(t, c.Send(context.Background(), fmt.Sprintf("question %d", i)))
	}
	require.Len(t, c.Messages(), 16)

	require.NoError(t, c.Send(context.Background(), "dernière"))
	last := b.history[len(b.history)-1]
	require.Len(t, last, 11, "ten previous messages plus the new one")
	assert.Equal(t, "dernière", last[10].Content)
	assert.Equal(t, c.Messages()[6].Content, last[0].Content)
}

func TestConversation_OneSendAtATime(t *testing.T) {
	c := NewConversation(&fakeBackend{})
	_, err := c.BeginSend(context.Background(), "un")
	require.NoError(t, err)
	assert.True(t, c.Loading())

	_, err = c.BeginSend(context.Background(), "deux")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Reset(), ErrBusy)

	c.Receive(context.Background(), "réponse", nil)
	assert.False(t, c.Loading())
	assert.Len(t, c.Messages(), 2)

	// A late duplicate delivery is ignored.
	c.Receive(context.Background(), "encore", nil)
	assert.Len(t, c.Messages(), 2)
}

func TestConversation_EmptyInput(t *testing.T) {
	c := NewConversation(&fakeBackend{})
	_, err := c.BeginSend(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.False(t, c.Loading())
	assert.Empty(t, c.Messages())
}

func TestConversation_ErrorsBecomeSystemMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server message",
			err:  &api.StatusError{Op: "chat", Code: 500, Message: "Groq API key not configured."},
			want: "Erreur: Groq API key not configured.",
		},
		{
			name: "transport failure",
			err:  errors.New("connection refused"),
			want: "Désolé, je ne peux pas répondre pour le moment.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			c := NewConversation(&fakeBackend{err: tt.err}, WithRecorder(rec))
			err := c.Send(context.Background(), "Bonjour")
			require.Error(t, err)

			msgs := c.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, RoleSystem, msgs[1].Role)
			assert.Equal(t, tt.want, msgs[1].Content)
			assert.False(t, c.Loading())
			assert.Len(t, rec.rows, 1, "system notes are not stored")
		})
	}
}

func TestConversation_RecorderFailureIsNotFatal(t *testing.T) {
	c := NewConversation(&fakeBackend{reply: "ok"}, WithRecorder(&memRecorder{err: errors.New("disk full")}))
	require.NoError(t, c.Send(context.Background(), "Bonjour"))
	assert.Len(t, c.Messages(), 2)
}

func TestConversation_Reset(t *testing.T) {
	c := NewConversation(&fakeBackend{reply: "ok"})
	require.NoError(t, c.Send(context.Background(), "Bonjour"))
	first := c.SessionID()

	require.NoError(t, c.Reset())
	assert.Empty(t, c.Messages())
	assert.NotEqual(t, first, c.SessionID())
}

func TestRemote_Chat(t *testing.T) {
	f := &fakeAPI{chatReply: "Salut !"}
	r := NewRemote(f)

	reply, err := r.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "Bonjour"},
		{Role: RoleSystem, Content: "Erreur: x"},
		{Role: RoleAssistant, Content: "Salut"},
		{Role: RoleUser, Content: "Ça va ?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Salut !", reply)
	require.Len(t, f.chat, 3)
	assert.Equal(t, api.ChatMessage{Role: "assistant", Content: "Salut"}, f.chat[1])
}
