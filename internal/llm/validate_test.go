package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// testSchema is a cut-down exercise draft.
func testSchema() *Schema {
	return &Schema{
		Name:        "test-exercise",
		Description: "A short exercise",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":      map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
				"points":     map[string]any{"type": "integer", "minimum": 1},
				"hints": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    map[string]any{"type": "string"},
				},
			},
			"required": []any{"title", "points"},
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"complete", `{"title":"Les fractions","difficulty":"medium","points":10,"hints":["Pense au dénominateur"]}`, false},
		{"optional fields missing", `{"title":"Le passé composé","points":5}`, false},
		{"fenced", "```json\n{\"title\":\"Rome\",\"points\":10}\n```", false},
		{"fence without language", "```\n{\"title\":\"Rome\",\"points\":10}```", false},
		{"missing points", `{"title":"Rome"}`, true},
		{"points as text", `{"title":"Rome","points":"dix"}`, true},
		{"zero points", `{"title":"Rome","points":0}`, true},
		{"unknown difficulty", `{"title":"Rome","points":10,"difficulty":"extreme"}`, true},
		{"empty hints", `{"title":"Rome","points":10,"hints":[]}`, true},
		{"prose", `Voici ton exercice !`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`Bonjour !`)); err != nil {
		t.Fatalf("chat replies have no schema, got: %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var got struct {
		Title  string `json:"title"`
		Points int    `json:"points"`
	}
	raw := json.RawMessage("```json\n{\"title\":\"Les volcans\",\"points\":15}\n```")
	if err := DecodeJSON(testSchema(), raw, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Les volcans" || got.Points != 15 {
		t.Errorf("decoded %+v", got)
	}

	if err := DecodeJSON(testSchema(), json.RawMessage(`{"title":"x"}`), &got); err == nil {
		t.Fatal("expected a schema error")
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := string(StripFence(json.RawMessage(tt.in))); got != tt.want {
			t.Errorf("StripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
