package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(testSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s, want OBJECT", s.Type)
	}
	if len(s.Properties) != 5 {
		t.Fatalf("got %d properties, want 5", len(s.Properties))
	}
	if got := s.Properties["difficulty"].Type; got != genai.TypeInteger {
		t.Errorf("difficulty type = %s", got)
	}
	if got := s.Properties["format"].Enum; len(got) != 2 {
		t.Errorf("format enum = %v, want 2 values", got)
	}
	choices := s.Properties["choices"]
	if choices.Type != genai.TypeArray || choices.Items == nil || choices.Items.Type != genai.TypeString {
		t.Errorf("choices = %+v", choices)
	}
	if len(s.Required) != 2 {
		t.Errorf("required = %v", s.Required)
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"strings", []string{"a", "b"}, 2},
		{"decoded json", []any{"a", 1, "c"}, 2},
		{"missing", nil, 0},
		{"wrong kind", "a", 0},
	}
	for _, tt := range tests {
		if got := stringList(tt.in); len(got) != tt.want {
			t.Errorf("%s: stringList = %v, want %d items", tt.name, got, tt.want)
		}
	}
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
