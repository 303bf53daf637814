package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LLMRequest records one call to an LLM provider.
type LLMRequest struct {
	Sequence     int64
	At           time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Error        string
	Request      string
	Response     string
}

// LLMRequestRepo is the append-only LLM request log.
type LLMRequestRepo struct {
	db *sql.DB
}

func (r *LLMRequestRepo) AppendLLMRequest(ctx context.Context, rec LLMRequest) (err error) {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return err
	}
	query, args := sqlite.Insert(tableLLM).
		Columns("sequence", "at", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error", "request", "response").
		Values(seq, rec.At.UTC(), rec.Provider, rec.Model, rec.Purpose, rec.InputTokens, rec.OutputTokens,
			rec.LatencyMs, rec.Success, rec.Error, rec.Request, rec.Response).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns all of them.
func (r *LLMRequestRepo) Recent(ctx context.Context, limit int) ([]LLMRequest, error) {
	sel := sqlite.Select("sequence", "at", "provider", "model", "purpose", "input_tokens", "output_tokens",
		"latency_ms", "success", "error", "request", "response").
		From(sqlite.Table(tableLLM)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		var rec LLMRequest
		if err := rows.Scan(&rec.Sequence, &rec.At, &rec.Provider, &rec.Model, &rec.Purpose,
			&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success, &rec.Error,
			&rec.Request, &rec.Response); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		rec.At = rec.At.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
