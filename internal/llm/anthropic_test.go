package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const tutorPersona = "Tu es un tuteur intelligent et bienveillant pour des élèves en France."

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicReply(w http.ResponseWriter, stop string, texts ...string) {
	blocks := make([]map[string]any, len(texts))
	for i, s := range texts {
		blocks[i] = map[string]any{"type": "text", "text": s}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     blocks,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 45},
	})
}

func anthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_Chat(t *testing.T) {
	var body struct {
		System   []struct{ Text string } `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		anthropicReply(w, "end_turn", "Une fraction, c'est une part ", "d'un tout 🍕")
	})

	resp, err := p.Generate(context.Background(), Request{
		System: tutorPersona,
		Messages: []Message{
			{Role: RoleAssistant, Content: "Bonjour ! Je suis ton tuteur."},
			{Role: RoleUser, Content: "C'est quoi une fraction ?"},
			{Role: RoleUser, Content: "Tu es là ?"},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Text(); got != "Une fraction, c'est une part d'un tout 🍕" {
		t.Errorf("reply = %q", got)
	}
	if resp.Usage.TotalTokens != 165 || resp.StopReason != "end" {
		t.Errorf("usage = %+v, stop = %q", resp.Usage, resp.StopReason)
	}

	if len(body.System) != 1 || body.System[0].Text != tutorPersona {
		t.Errorf("system = %+v", body.System)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want one merged user turn", body.Messages)
	}
	if got := body.Messages[0].Content[0].Text; got != "C'est quoi une fraction ?\n\nTu es là ?" {
		t.Errorf("merged turn = %q", got)
	}
}

func TestAnthropicProvider_TruncatedDraft(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "max_tokens", `{"title":"Les fractions","points":`)
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Génère un exercice."}},
		Schema:    testSchema(),
		MaxTokens: 64,
	})
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		check  func(error) bool
	}{
		{"bad key", http.StatusUnauthorized, "authentication_error", func(err error) bool {
			var e *ErrAuth
			return errors.As(err, &e) && e.Provider == ProviderAnthropic
		}},
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"overloaded", 529, "overloaded_error", func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				anthropicError(w, tt.status, tt.kind)
			})
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "Bonjour"}},
				MaxTokens: 100,
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error %T (%v)", err, err)
			}
		})
	}
}

func TestAnthropicProvider_NothingToSend(t *testing.T) {
	p := &AnthropicProvider{model: "claude-haiku-4-5-20251001"}
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleAssistant, Content: "Bonjour !"}},
	})
	if err == nil {
		t.Fatal("expected an error for a history without user turns")
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct{ input, want string }{
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
