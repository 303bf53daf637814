package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": "nope"},
		})
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	var gotBody map[string]any
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"prompt":"2+3","answer":"5"}`, "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Prompt("You write questions.", "One please.", testSchema(), 256))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"prompt":"2+3","answer":"5"}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Errorf("total tokens = %d, want 80", resp.Usage.TotalTokens)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q, want end", resp.StopReason)
	}
	if gotBody["model"] != "claude-sonnet-4-20250514" {
		t.Errorf("request model = %v", gotBody["model"])
	}
}

func TestAnthropicProvider_SchemaViolation(t *testing.T) {
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"prompt":"2+3"}`, "end_turn"))
	})

	_, err := p.Generate(context.Background(), Prompt("", "q", testSchema(), 256))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"prompt":"2+`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Prompt("", "q", testSchema(), 8))
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit", func(t *testing.T) {
		p := newTestAnthropic(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error"))
		_, err := p.Generate(context.Background(), Prompt("", "q", nil, 16))
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
		}
	})
	t.Run("server error", func(t *testing.T) {
		p := newTestAnthropic(t, anthropicError(http.StatusInternalServerError, "api_error"))
		_, err := p.Generate(context.Background(), Prompt("", "q", nil, 16))
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
		}
	})
}

func TestAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		in      string
		aliases map[string]string
		want    string
	}{
		{"claude-sonnet", anthropicAliases, "claude-sonnet-4-20250514"},
		{"claude-haiku", anthropicAliases, "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", anthropicAliases, "claude-opus-4-1"},
		{"gemini-flash", geminiAliases, "gemini-2.0-flash"},
		{"gemini-2.5-flash-lite", geminiAliases, "gemini-2.5-flash-lite"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, tt.aliases); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
