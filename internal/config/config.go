// Package config loads Pathwise settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"time"

	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/store"
)

// Config is the root configuration.
type Config struct {
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Hearts HeartsConfig `yaml:"hearts"`
	Quiz   QuizConfig   `yaml:"quiz"`
	LLM    LLMConfig    `yaml:"llm"`
}

// DBConfig locates the sqlite database. An empty path uses the XDG data
// directory.
type DBConfig struct {
	Path string `yaml:"path" env:"PATHWISE_DB"`
}

// LogConfig controls the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"  env:"PATHWISE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"PATHWISE_LOG_FORMAT" env-default:"text"`
	// File, when set, receives log output instead of stderr. The terminal
	// player needs this to keep logs off the screen.
	File string `yaml:"file" env:"PATHWISE_LOG_FILE"`
}

// HeartsConfig tunes the life economy.
type HeartsConfig struct {
	Max               int           `yaml:"max"                 env:"PATHWISE_HEARTS_MAX"                 env-default:"5"`
	RefillDelay       time.Duration `yaml:"refill_delay"        env:"PATHWISE_HEARTS_REFILL_DELAY"        env-default:"20m"`
	RecoveryPassScore int           `yaml:"recovery_pass_score" env:"PATHWISE_HEARTS_RECOVERY_PASS_SCORE" env-default:"50"`
	RecoveryQuestions int           `yaml:"recovery_questions"  env:"PATHWISE_HEARTS_RECOVERY_QUESTIONS"  env-default:"5"`
}

// QuizConfig sets quiz defaults.
type QuizConfig struct {
	Questions int `yaml:"questions"         env:"PATHWISE_QUIZ_QUESTIONS"         env-default:"10"`

	// LessonPassScore is the lowest lesson quiz score that completes a node.
	LessonPassScore int `yaml:"lesson_pass_score" env:"PATHWISE_QUIZ_LESSON_PASS_SCORE" env-default:"50"`
}

// LLMConfig selects the provider backing generated questions. Provider
// "auto" picks the first vendor key found in the environment.
type LLMConfig struct {
	Provider string `yaml:"provider" env:"PATHWISE_LLM_PROVIDER" env-default:"none"`

	AnthropicAPIKey  string `yaml:"anthropic_api_key"  env:"PATHWISE_ANTHROPIC_API_KEY"`
	AnthropicModel   string `yaml:"anthropic_model"    env:"PATHWISE_ANTHROPIC_MODEL"    env-default:"claude-haiku"`
	AnthropicBaseURL string `yaml:"anthropic_base_url" env:"PATHWISE_ANTHROPIC_BASE_URL"`

	OpenAIAPIKey  string `yaml:"openai_api_key"  env:"PATHWISE_OPENAI_API_KEY"`
	OpenAIModel   string `yaml:"openai_model"    env:"PATHWISE_OPENAI_MODEL"    env-default:"gpt-4o-mini"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"PATHWISE_OPENAI_BASE_URL"`

	GeminiAPIKey string `yaml:"gemini_api_key" env:"PATHWISE_GEMINI_API_KEY"`
	GeminiModel  string `yaml:"gemini_model"   env:"PATHWISE_GEMINI_MODEL"   env-default:"gemini-flash"`

	MaxAttempts int           `yaml:"max_attempts" env:"PATHWISE_LLM_MAX_ATTEMPTS" env-default:"3"`
	Timeout     time.Duration `yaml:"timeout"      env:"PATHWISE_LLM_TIMEOUT"      env-default:"30s"`
	// BatchSize is how many items the generator asks for per request.
	BatchSize int `yaml:"batch_size" env:"PATHWISE_LLM_BATCH_SIZE" env-default:"5"`
}

// ResolvePath returns the database path, falling back to the default
// location.
func (c DBConfig) ResolvePath() (string, error) {
	if c.Path != "" {
		return c.Path, store.EnsureDir(c.Path)
	}
	return store.DefaultDBPath()
}

// Economy converts to the hearts package configuration.
func (c HeartsConfig) Economy() hearts.Config {
	return hearts.Config{
		Max:               c.Max,
		RefillDelay:       c.RefillDelay,
		RecoveryPassScore: c.RecoveryPassScore,
	}
}

// ProviderConfig converts to the llm package configuration.
func (c LLMConfig) ProviderConfig() llm.Config {
	if c.Provider == "auto" {
		if found, ok := llm.DiscoverConfig(); ok {
			found.Retry.MaxAttempts = c.MaxAttempts
			found.Timeout = c.Timeout
			return found
		}
		return llm.DefaultConfig()
	}

	cfg := llm.DefaultConfig()
	cfg.Provider = c.Provider
	cfg.Anthropic = llm.AnthropicConfig{APIKey: c.AnthropicAPIKey, Model: c.AnthropicModel, BaseURL: c.AnthropicBaseURL}
	cfg.OpenAI = llm.OpenAIConfig{APIKey: c.OpenAIAPIKey, Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL}
	cfg.Gemini = llm.GeminiConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel}
	cfg.Retry.MaxAttempts = c.MaxAttempts
	cfg.Timeout = c.Timeout
	return cfg
}
