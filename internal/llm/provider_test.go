package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_RepliesInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`Bonjour ! Sur quoi travailles-tu ?`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockReply("Très bien, commençons par les fractions."),
	)

	ctx := WithPurpose(context.Background(), PurposeChat)
	first, err := mock.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "Salut"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text() != "Bonjour ! Sur quoi travailles-tu ?" || first.Usage.InputTokens != 10 || first.StopReason != "end" {
		t.Fatalf("first reply = %+v", first)
	}

	second, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Les fractions"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Text() != "Très bien, commençons par les fractions." {
		t.Fatalf("second reply = %q", second.Text())
	}

	if mock.CallCount() != 2 || mock.Calls[1].Messages[0].Content != "Les fractions" {
		t.Fatalf("calls = %+v", mock.Calls)
	}
	if len(mock.Purposes) != 2 || mock.Purposes[0] != PurposeChat || mock.Purposes[1] != "unknown" {
		t.Fatalf("purposes = %v", mock.Purposes)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestMockProvider_QueuedErrorAndAdd(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	mock.AddResponse(MockReply("Me revoilà !"))

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil || resp.Text() != "Me revoilà !" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeExerciseGen)
	if p := PurposeFrom(ctx); p != PurposeExerciseGen {
		t.Fatalf("expected %q, got %q", PurposeExerciseGen, p)
	}
}

func TestMergeTurns(t *testing.T) {
	tests := []struct {
		name string
		in   []Message
		want []Message
	}{
		{
			name: "greeting dropped",
			in: []Message{
				{Role: RoleAssistant, Content: "Bonjour ! Je suis ton tuteur."},
				{Role: RoleUser, Content: "C'est quoi un verbe ?"},
			},
			want: []Message{{Role: RoleUser, Content: "C'est quoi un verbe ?"}},
		},
		{
			name: "consecutive user turns joined",
			in: []Message{
				{Role: RoleUser, Content: "J'ai trouvé 3/6"},
				{Role: RoleUser, Content: "C'est juste ?"},
				{Role: RoleAssistant, Content: "Presque !"},
				{Role: RoleAssistant, Content: "   "},
				{Role: RoleUser, Content: "Ah, 3/4 ?"},
			},
			want: []Message{
				{Role: RoleUser, Content: "J'ai trouvé 3/6\n\nC'est juste ?"},
				{Role: RoleAssistant, Content: "Presque !"},
				{Role: RoleUser, Content: "Ah, 3/4 ?"},
			},
		},
		{
			name: "nothing from the learner",
			in:   []Message{{Role: RoleAssistant, Content: "Bonjour !"}},
			want: []Message{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeTurns(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("turn %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	withProvider := func(name string, mutate func(*Config)) Config {
		c := DefaultConfig()
		c.Provider = name
		if mutate != nil {
			mutate(&c)
		}
		return c
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"groq without key", withProvider(ProviderGroq, nil), true},
		{"groq with key", withProvider(ProviderGroq, func(c *Config) { c.Groq.APIKey = "gsk" }), false},
		{"anthropic without key", withProvider(ProviderAnthropic, nil), true},
		{"anthropic with key", withProvider(ProviderAnthropic, func(c *Config) { c.Anthropic.APIKey = "sk-test" }), false},
		{"openai with key", withProvider(ProviderOpenAI, func(c *Config) { c.OpenAI.APIKey = "sk-test" }), false},
		{"openrouter without key", withProvider(ProviderOpenRouter, nil), true},
		{"mock needs no key", withProvider(ProviderMock, nil), false},
		{"zero attempts", withProvider(ProviderMock, func(c *Config) { c.Retry.MaxAttempts = 0 }), true},
		{"unknown provider", withProvider("unknown", nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResponse_Text(t *testing.T) {
	r := &Response{Content: json.RawMessage("  Bonjour !\n")}
	if got := r.Text(); got != "Bonjour !" {
		t.Fatalf("Text() = %q", got)
	}
}
