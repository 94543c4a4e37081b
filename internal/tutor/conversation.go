package tutor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tutorat/tutorat/internal/api"
	"github.com/tutorat/tutorat/internal/store"
)

// Greeting is shown while the conversation is empty.
const Greeting = "Bonjour ! Je suis ton tuteur IA. Pose-moi une question sur tes leçons ! 👋"

const (
	contextWindow  = 10
	unavailableMsg = "Désolé, je ne peux pas répondre pour le moment."
)

var (
	// ErrBusy is returned by BeginSend while a reply is pending.
	ErrBusy = errors.New("a reply is already pending")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// ChatRecorder persists chat messages. Conversation works without one.
type ChatRecorder interface {
	AppendChatMessage(ctx context.Context, data store.ChatMessageData) error
}

// Conversation is the chat widget state. It is owned by one view and is
// not safe for concurrent use; the backend call itself may run elsewhere
// between BeginSend and Receive.
type Conversation struct {
	backend  Backend
	recorder ChatRecorder
	logger   zerolog.Logger

	sessionID string
	messages  []Message
	open      bool
	loading   bool
	now       func() time.Time
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithRecorder stores every user and assistant message.
func WithRecorder(r ChatRecorder) ConversationOption {
	return func(c *Conversation) { c.recorder = r }
}

// WithLogger sets the logger for recorder failures.
func WithLogger(l zerolog.Logger) ConversationOption {
	return func(c *Conversation) { c.logger = l }
}

// NewConversation returns a closed, empty conversation.
func NewConversation(b Backend, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		backend:   b,
		logger:    zerolog.Nop(),
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Conversation) SessionID() string   { return c.sessionID }
func (c *Conversation) Messages() []Message { return c.messages }
func (c *Conversation) Loading() bool       { return c.loading }
func (c *Conversation) IsOpen() bool        { return c.open }
func (c *Conversation) Open()               { c.open = true }

// Close hides the widget. History is kept.
func (c *Conversation) Close() { c.open = false }

// Toggle flips the open state.
func (c *Conversation) Toggle() { c.open = !c.open }

// Reset starts a new conversation. It is refused while a reply is pending.
func (c *Conversation) Reset() error {
	if c.loading {
		return ErrBusy
	}
	c.messages = nil
	c.sessionID = uuid.NewString()
	return nil
}

// BeginSend appends the user's message and returns the context to send:
// the last ten messages before it plus the message itself.
func (c *Conversation) BeginSend(ctx context.Context, text string) ([]Message, error) {
	if c.loading {
		return nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	start := max(len(c.messages)-contextWindow, 0)
	window := make([]Message, 0, len(c.messages)-start+1)
	window = append(window, c.messages[start:]...)

	msg := Message{Role: RoleUser, Content: text, At: c.now()}
	c.messages = append(c.messages, msg)
	c.loading = true
	c.record(ctx, msg)

	return append(window, msg), nil
}

// Receive ends a pending send with the backend's reply or error. Errors
// become system messages in the history.
func (c *Conversation) Receive(ctx context.Context, reply string, err error) {
	if !c.loading {
		return
	}
	c.loading = false

	if err != nil {
		c.messages = append(c.messages, Message{Role: RoleSystem, Content: errorText(err), At: c.now()})
		return
	}
	msg := Message{Role: RoleAssistant, Content: reply, At: c.now()}
	c.messages = append(c.messages, msg)
	c.record(ctx, msg)
}

// Send runs BeginSend, the backend call and Receive in one step.
func (c *Conversation) Send(ctx context.Context, text string) error {
	window, err := c.BeginSend(ctx, text)
	if err != nil {
		return err
	}
	reply, err := c.backend.Chat(ctx, window)
	c.Receive(ctx, reply, err)
	return err
}

// Backend returns the backend replies come from.
func (c *Conversation) Backend() Backend { return c.backend }

func (c *Conversation) record(ctx context.Context, m Message) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.AppendChatMessage(ctx, store.ChatMessageData{
		SessionID: c.sessionID,
		Role:      string(m.Role),
		Content:   m.Content,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("store chat message")
	}
}

// errorText turns a backend error into the note shown to the user. A
// message from the server is shown as is.
func errorText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return "Erreur: " + se.Message
	}
	return unavailableMsg
}
