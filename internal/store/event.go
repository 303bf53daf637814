package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/pathwise/internal/notify"
)

// The global sequence is shared by events and LLM request records so the
// two logs interleave in a single order.
func seedSequence(ctx context.Context, db *sql.DB) error {
	query, args := sqlite.Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// nextSequence increments the counter inside tx and returns the value
// before the increment, so a rolled-back commit leaves no gap.
func nextSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// StoredEvent is an event with its position in the log.
type StoredEvent struct {
	Sequence int64
	notify.Event
}

// QueryOpts filters event queries. Zero values mean no filter.
type QueryOpts struct {
	UserID string
	Kinds  []notify.Kind
	Limit  int       // most recent N (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // at >= From
	To     time.Time // at <= To
}

// EventRepo reads the event log. Events are written by LearnerRepo.Commit.
type EventRepo struct {
	db *sql.DB
}

// QueryEvents returns matching events in sequence order.
func (r *EventRepo) QueryEvents(ctx context.Context, opts QueryOpts) ([]StoredEvent, error) {
	sel := sqlite.Select("id", "sequence", "kind", "user_id", "at", "data").
		From(sqlite.Table(tableEvents)).
		OrderBy(entsql.Desc("sequence"))
	if opts.UserID != "" {
		sel.Where(entsql.EQ("user_id", opts.UserID))
	}
	if len(opts.Kinds) > 0 {
		kinds := make([]any, len(opts.Kinds))
		for i, k := range opts.Kinds {
			kinds[i] = string(k)
		}
		sel.Where(entsql.In("kind", kinds...))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("at", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var (
			ev   StoredEvent
			kind string
			data string
		)
		if err := rows.Scan(&ev.ID, &ev.Sequence, &kind, &ev.UserID, &ev.At, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = notify.Kind(kind)
		ev.At = ev.At.UTC()
		if data != "" {
			if err := json.Unmarshal([]byte(data), &ev.Data); err != nil {
				return nil, fmt.Errorf("decode event %s data: %w", ev.ID, err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first for the limit; callers want log order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, seq int64, ev notify.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	query, args := sqlite.Insert(tableEvents).
		Columns("id", "sequence", "kind", "user_id", "at", "data").
		Values(ev.ID, seq, string(ev.Kind), ev.UserID, ev.At.UTC(), string(data)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
