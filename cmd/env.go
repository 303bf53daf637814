package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logging"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/store"
)

// env holds what a command needs to talk to the engine.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	engine *engine.Engine

	closeLog func() error
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.closeLog != nil {
		e.closeLog()
	}
}

// resolveDBPath returns the database path: --db first, then the
// configured path, then the default XDG location.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return cfg.DB.ResolvePath()
}

// openStore loads the configuration and opens the database without
// building an engine.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// setup wires config, logging, storage, the optional LLM generator and the
// engine. The terminal player logs to a file beside the database so log
// lines never land on the screen.
func setup(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	logCfg := cfg.Log
	if tui && logCfg.File == "" {
		logCfg.File = filepath.Join(filepath.Dir(dbPath), "pathwise.log")
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closeLog: closeLog}

	e.store, err = store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	graph := skillgraph.Default()
	var content bank.Bank = bank.DefaultStatic()

	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM.ProviderConfig(), e.store.LLMRequests(), logger)
	switch {
	case err != nil:
		logger.Warn("LLM provider not configured, using built-in content only", "error", err)
	case provider != nil:
		gcfg := bank.DefaultGeneratorConfig()
		gcfg.BatchSize = cfg.LLM.BatchSize
		gcfg.Logger = logger
		content = bank.Chain{content, bank.NewGenerator(provider, graph, gcfg)}
		logger.Info("LLM generation enabled", "model", provider.ModelID())
	}

	e.engine, err = engine.New(engine.Options{
		Graph:             graph,
		Bank:              content,
		Repo:              e.store.Learners(),
		Hearts:            cfg.Hearts.Economy(),
		QuizQuestions:     cfg.Quiz.Questions,
		RecoveryQuestions: cfg.Hearts.RecoveryQuestions,
		LessonPassScore:   cfg.Quiz.LessonPassScore,
		Sinks:             []notify.Sink{notify.Log{Logger: logger, Level: slog.LevelInfo}},
		Logger:            logger,
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return e, nil
}
