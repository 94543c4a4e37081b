package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestCompatProviders(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*OpenAIProvider, error)
		wantModel string
		wantErr   bool
	}{
		{
			name:      "groq default model",
			build:     func() (*OpenAIProvider, error) { return NewGroqProvider(GroqConfig{APIKey: "gsk-test"}) },
			wantModel: "llama-3.3-70b-versatile",
		},
		{
			name: "groq custom model",
			build: func() (*OpenAIProvider, error) {
				return NewGroqProvider(GroqConfig{APIKey: "gsk-test", Model: "llama-3.1-8b-instant"})
			},
			wantModel: "llama-3.1-8b-instant",
		},
		{
			name:    "groq without key",
			build:   func() (*OpenAIProvider, error) { return NewGroqProvider(GroqConfig{}) },
			wantErr: true,
		},
		{
			name: "openrouter pass-through model",
			build: func() (*OpenAIProvider, error) {
				return NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3.3-70b-instruct"})
			},
			wantModel: "meta-llama/llama-3.3-70b-instruct",
		},
		{
			name:    "openrouter without key",
			build:   func() (*OpenAIProvider, error) { return NewOpenRouterProvider(OpenRouterConfig{Model: "x"}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.wantModel {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.wantModel)
			}
		})
	}
}

func TestGroqProvider_SchemaUsesJSONObjectMode(t *testing.T) {
	var gotFormat, gotSystem string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiBody
		json.NewDecoder(r.Body).Decode(&body)
		if body.ResponseFormat != nil {
			gotFormat = body.ResponseFormat.Type
		}
		if len(body.Messages) > 0 {
			gotSystem = body.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-groq",
			"object":  "chat.completion",
			"model":   "llama-3.3-70b-versatile",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": `{"title":"Le passé composé","points":5}`}, "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGroqProvider(GroqConfig{APIKey: "gsk-test", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:   "Tu es un générateur d'exercices scolaires.",
		Messages: []Message{{Role: RoleUser, Content: "Génère un exercice de Français sur le passé composé."}},
		Schema:   testSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFormat != string(openai.ChatCompletionResponseFormatTypeJSONObject) {
		t.Errorf("response_format = %q, want json_object", gotFormat)
	}
	if !strings.Contains(gotSystem, "objet JSON valide") {
		t.Errorf("system prompt = %q, want the JSON instruction", gotSystem)
	}
	if resp.Usage.TotalTokens != 8 {
		t.Errorf("total tokens = %d, want 8", resp.Usage.TotalTokens)
	}
}
