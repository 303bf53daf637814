package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider builds the configured provider wrapped as
// caller -> retry -> logging -> base. It returns (nil, nil) when no
// provider is selected.
func NewProvider(ctx context.Context, cfg Config, rec Recorder, logger *slog.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, rec, logger), cfg.Retry), nil
}
