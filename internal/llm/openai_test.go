package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type openaiBody struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newTestOpenAIProvider(t *testing.T, name string, jsonObjectOnly bool, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newCompatProvider(name, "test-key", server.URL+"/v1", "llama-3.3-70b-versatile", jsonObjectOnly)
}

func completion(w http.ResponseWriter, content, finish string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 310, "completion_tokens": 42, "total_tokens": 352},
	})
}

func TestOpenAIProvider_Chat(t *testing.T) {
	var body openaiBody
	p := newTestOpenAIProvider(t, ProviderGroq, true, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		completion(w, "Bien sûr ! $\\frac{1}{2}$ veut dire une part sur deux.", "stop")
	})

	resp, err := p.Generate(context.Background(), Request{
		System: tutorPersona,
		Messages: []Message{
			{Role: RoleUser, Content: "Explique-moi 1/2"},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text(), `$\frac{1}{2}$`) {
		t.Errorf("reply = %q", resp.Text())
	}
	if resp.Usage.InputTokens != 310 || resp.Usage.OutputTokens != 42 || resp.StopReason != "end" {
		t.Errorf("usage = %+v, stop = %q", resp.Usage, resp.StopReason)
	}

	if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[0].Content != tutorPersona {
		t.Errorf("messages = %+v", body.Messages)
	}
	if body.ResponseFormat != nil {
		t.Errorf("chat requests carry no response format, got %+v", body.ResponseFormat)
	}
}

func TestOpenAIProvider_JSONObjectModeSpellsOutSchema(t *testing.T) {
	var body openaiBody
	p := newTestOpenAIProvider(t, ProviderGroq, true, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		completion(w, "```json\n{\"title\":\"Les volcans\",\"points\":10}\n```", "stop")
	})

	resp, err := p.Generate(context.Background(), Request{
		System:   "Tu es un générateur d'exercices scolaires.",
		Messages: []Message{{Role: RoleUser, Content: "Génère un exercice sur les volcans."}},
		Schema:   testSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"title":"Les volcans","points":10}` {
		t.Errorf("content = %s, want the fence stripped", resp.Content)
	}
	if body.ResponseFormat == nil || body.ResponseFormat.Type != string(openai.ChatCompletionResponseFormatTypeJSONObject) {
		t.Fatalf("response_format = %+v, want json_object", body.ResponseFormat)
	}
	system := body.Messages[0].Content
	if !strings.HasPrefix(system, "Tu es un générateur") || !strings.Contains(system, "JSON") || !strings.Contains(system, `"points"`) {
		t.Errorf("system prompt = %q", system)
	}
}

func TestOpenAIProvider_JSONSchemaMode(t *testing.T) {
	var body openaiBody
	p := newTestOpenAIProvider(t, ProviderOpenAI, false, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		completion(w, `{"title":"Rome","points":10}`, "stop")
	})

	_, err := p.Generate(context.Background(), Request{
		System:   "Tu es un générateur d'exercices scolaires.",
		Messages: []Message{{Role: RoleUser, Content: "Rome"}},
		Schema:   testSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ResponseFormat == nil || body.ResponseFormat.Type != string(openai.ChatCompletionResponseFormatTypeJSONSchema) {
		t.Fatalf("response_format = %+v, want json_schema", body.ResponseFormat)
	}
	if body.Messages[0].Content != "Tu es un générateur d'exercices scolaires." {
		t.Errorf("system prompt changed in json_schema mode: %q", body.Messages[0].Content)
	}
}

func TestOpenAIProvider_DraftFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		finish  string
		check   func(error) bool
	}{
		{"truncated", `{"title":"Rome","poi`, "length", func(err error) bool {
			var e *ErrMaxTokensExceeded
			return errors.As(err, &e)
		}},
		{"off schema", `{"title":"Rome"}`, "stop", func(err error) bool {
			var e *ErrInvalidResponse
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, ProviderGroq, true, func(w http.ResponseWriter, r *http.Request) {
				completion(w, tt.content, tt.finish)
			})
			_, err := p.Generate(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "Rome"}},
				Schema:   testSchema(),
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"bad key", http.StatusUnauthorized, func(err error) bool {
			var e *ErrAuth
			return errors.As(err, &e) && e.Provider == ProviderGroq
		}},
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"server error", http.StatusServiceUnavailable, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, ProviderGroq, true, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": http.StatusText(tt.status), "type": "error"},
				})
			})
			_, err := p.Generate(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "Bonjour"}},
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error %T (%v)", err, err)
			}
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o-mini" || p.name != ProviderOpenAI || p.jsonObjectOnly {
		t.Errorf("provider = %+v", p)
	}
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("expected an error without API key")
	}
}
