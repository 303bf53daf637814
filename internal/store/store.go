package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// pragmas are set on every pooled connection through the DSN.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open connects to the SQLite database at path (a file path or a "file:"
// URI), applies pragmas and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY inside
	// transactions.
	db.SetMaxOpenConns(1)

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := seedSequence(context.Background(), db); err != nil {
		drv.Close()
		return nil, err
	}
	return &Store{db: db, drv: drv}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables()...)
}

// withPragmas appends the connection pragmas and the sortable time format
// to a DSN.
func withPragmas(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	b.WriteString(sep + "_time_format=sqlite")
	return b.String()
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// Learners returns the learner state repository.
func (s *Store) Learners() *LearnerRepo {
	return &LearnerRepo{db: s.db}
}

// Events returns the event log reader.
func (s *Store) Events() *EventRepo {
	return &EventRepo{db: s.db}
}

// LLMRequests returns the LLM request log.
func (s *Store) LLMRequests() *LLMRequestRepo {
	return &LLMRequestRepo{db: s.db}
}

// DefaultDBPath resolves the database file path in priority order:
//  1. PATHWISE_DB environment variable
//  2. $XDG_DATA_HOME/pathwise/pathwise.db
//  3. ~/.local/share/pathwise/pathwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PATHWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "pathwise", "pathwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// sqlite is the builder for every statement the store issues.
var sqlite = entsql.Dialect(dialect.SQLite)
