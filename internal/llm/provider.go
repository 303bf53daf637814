package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured content from a prompt.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the provider asks for JSON in that shape and validates it before
	// returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model this provider sends requests to.
	ModelID() string
}

// Request is a single prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, requests JSON output conforming to it.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 uses the provider default
}

// Role is the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema. Name is used as the schema or tool name by
// providers that need one and must be kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output.
type Response struct {
	// Content is the validated JSON when a schema was requested, otherwise
	// the raw text.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Prompt builds a single-turn request.
func Prompt(system, user string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: user}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// finish validates content against the request schema and assembles the
// response. Every SDK-backed provider ends with it.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == "max_tokens" && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// resolveModel maps a short alias to a provider model ID. Unknown names are
// passed through so full model IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
