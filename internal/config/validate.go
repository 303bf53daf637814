package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks value ranges. Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Log.validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if err := c.Hearts.validate(); err != nil {
		errs = append(errs, fmt.Errorf("hearts: %w", err))
	}
	if c.Quiz.Questions <= 0 {
		errs = append(errs, fmt.Errorf("quiz: questions must be > 0 (got %d)", c.Quiz.Questions))
	}
	if c.Quiz.LessonPassScore < 1 || c.Quiz.LessonPassScore > 100 {
		errs = append(errs, fmt.Errorf("quiz: lesson_pass_score must be within 1..100 (got %d)", c.Quiz.LessonPassScore))
	}
	if err := c.LLM.validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}
	return errors.Join(errs...)
}

func (l LogConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown format %q", l.Format)
	}
	return nil
}

func (h HeartsConfig) validate() error {
	if h.Max <= 0 {
		return fmt.Errorf("max must be > 0 (got %d)", h.Max)
	}
	if h.RefillDelay <= 0 {
		return fmt.Errorf("refill_delay must be > 0 (got %s)", h.RefillDelay)
	}
	if h.RecoveryPassScore < 1 || h.RecoveryPassScore > 100 {
		return fmt.Errorf("recovery_pass_score must be within 1..100 (got %d)", h.RecoveryPassScore)
	}
	if h.RecoveryQuestions <= 0 {
		return fmt.Errorf("recovery_questions must be > 0 (got %d)", h.RecoveryQuestions)
	}
	return nil
}

func (l LLMConfig) validate() error {
	if l.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", l.BatchSize)
	}
	if l.Provider == "auto" {
		return nil
	}
	return l.ProviderConfig().Validate()
}
