package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/llm"
)

// isolate runs the test in an empty directory so no stray .env is loaded,
// and clears every variable Load reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"PATHWISE_CONFIG", "PATHWISE_DB", "PATHWISE_LOG_LEVEL", "PATHWISE_LOG_FORMAT", "PATHWISE_LOG_FILE",
		"PATHWISE_HEARTS_MAX", "PATHWISE_HEARTS_REFILL_DELAY", "PATHWISE_HEARTS_RECOVERY_PASS_SCORE",
		"PATHWISE_HEARTS_RECOVERY_QUESTIONS", "PATHWISE_QUIZ_QUESTIONS", "PATHWISE_LLM_PROVIDER",
		"PATHWISE_ANTHROPIC_API_KEY", "PATHWISE_OPENAI_API_KEY", "PATHWISE_GEMINI_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DB.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Hearts.Max)
	assert.Equal(t, 20*time.Minute, cfg.Hearts.RefillDelay)
	assert.Equal(t, 50, cfg.Hearts.RecoveryPassScore)
	assert.Equal(t, 5, cfg.Hearts.RecoveryQuestions)
	assert.Equal(t, 10, cfg.Quiz.Questions)
	assert.Equal(t, 50, cfg.Quiz.LessonPassScore)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.False(t, cfg.LLM.ProviderConfig().Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PATHWISE_HEARTS_MAX", "3")
	t.Setenv("PATHWISE_HEARTS_REFILL_DELAY", "90s")
	t.Setenv("PATHWISE_QUIZ_QUESTIONS", "4")
	t.Setenv("PATHWISE_LLM_PROVIDER", "openai")
	t.Setenv("PATHWISE_OPENAI_API_KEY", "sk-test")
	t.Setenv("PATHWISE_OPENAI_BASE_URL", "https://openrouter.ai/api/v1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Hearts.Max)
	assert.Equal(t, 90*time.Second, cfg.Hearts.Economy().RefillDelay)
	assert.Equal(t, 4, cfg.Quiz.Questions)

	p := cfg.LLM.ProviderConfig()
	assert.Equal(t, llm.ProviderOpenAI, p.Provider)
	assert.Equal(t, "sk-test", p.OpenAI.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.OpenAI.BaseURL)
	assert.Equal(t, 3, p.Retry.MaxAttempts)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("PATHWISE_QUIZ_QUESTIONS=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PATHWISE_QUIZ_QUESTIONS") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Quiz.Questions)
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "pathwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/p.db
hearts:
  max: 4
  refill_delay: 10m
log:
  format: json
`), 0o644))
	t.Setenv("PATHWISE_CONFIG", path)
	t.Setenv("PATHWISE_HEARTS_MAX", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.db", cfg.DB.Path)
	assert.Equal(t, 6, cfg.Hearts.Max, "environment wins over the file")
	assert.Equal(t, 10*time.Minute, cfg.Hearts.RefillDelay)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Quiz.Questions, "defaults fill the rest")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero hearts", "PATHWISE_HEARTS_MAX", "0"},
		{"negative delay", "PATHWISE_HEARTS_REFILL_DELAY", "-1m"},
		{"pass score above 100", "PATHWISE_HEARTS_RECOVERY_PASS_SCORE", "101"},
		{"zero recovery pass score", "PATHWISE_HEARTS_RECOVERY_PASS_SCORE", "0"},
		{"zero delay", "PATHWISE_HEARTS_REFILL_DELAY", "0s"},
		{"zero lesson pass score", "PATHWISE_QUIZ_LESSON_PASS_SCORE", "0"},
		{"lesson pass score above 100", "PATHWISE_QUIZ_LESSON_PASS_SCORE", "101"},
		{"no quiz questions", "PATHWISE_QUIZ_QUESTIONS", "0"},
		{"bad log level", "PATHWISE_LOG_LEVEL", "loud"},
		{"bad log format", "PATHWISE_LOG_FORMAT", "xml"},
		{"provider without key", "PATHWISE_LLM_PROVIDER", "anthropic"},
		{"unknown provider", "PATHWISE_LLM_PROVIDER", "openrouter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLLMConfig_Auto(t *testing.T) {
	isolate(t)
	t.Setenv("PATHWISE_LLM_PROVIDER", "auto")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LLM.ProviderConfig().Enabled(), "no vendor key set")

	t.Setenv("GEMINI_API_KEY", "g")
	p := cfg.LLM.ProviderConfig()
	assert.Equal(t, llm.ProviderGemini, p.Provider)
	assert.Equal(t, "g", p.Gemini.APIKey)
}

func TestDBConfig_ResolvePath(t *testing.T) {
	dir := t.TempDir()
	p, err := DBConfig{Path: filepath.Join(dir, "x", "p.db")}.ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x", "p.db"), p)
	assert.DirExists(t, filepath.Join(dir, "x"))
}
