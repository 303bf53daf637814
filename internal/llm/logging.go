package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/pathwise/internal/store"
)

// Recorder persists LLM request records.
type Recorder interface {
	AppendLLMRequest(ctx context.Context, rec store.LLMRequest) error
}

// LoggingProvider records every request it forwards.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder Recorder
	logger   *slog.Logger
}

// WithLogging wraps p so that each request is written to rec and logged at
// debug level. rec may be nil.
func WithLogging(p Provider, provider string, rec Recorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: provider, recorder: rec, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	rec := store.LLMRequest{
		At:        start.UTC(),
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		Request:   renderRequest(req),
	}
	if resp != nil {
		rec.Model = resp.Model
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.Response = string(resp.Content)
	}
	if err != nil {
		rec.Error = err.Error()
	}

	l.logger.Debug("llm request",
		"provider", rec.Provider,
		"model", rec.Model,
		"purpose", rec.Purpose,
		"latency_ms", rec.LatencyMs,
		"success", rec.Success,
	)
	if l.recorder != nil {
		if logErr := l.recorder.AppendLLMRequest(ctx, rec); logErr != nil {
			l.logger.Warn("record llm request", "err", logErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
