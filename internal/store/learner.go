package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
)

// LearnerState is everything persisted for one learner. Hearts and Profile
// are nil when the learner has no row yet.
type LearnerState struct {
	UserID   string
	Progress []progress.NodeProgress
	Hearts   *hearts.State
	Profile  *progress.Profile
}

// OperationRecord is the stored outcome of a mutating engine operation,
// replayed when the same operation ID is submitted again.
type OperationRecord struct {
	OperationID string
	UserID      string
	Kind        string
	Result      json.RawMessage
	ErrCode     string
	CreatedAt   time.Time
}

// Write is one atomic change to a learner's state. Nil and empty fields are
// left untouched.
type Write struct {
	UserID    string
	Progress  []progress.NodeProgress
	Hearts    *hearts.State
	Profile   *progress.Profile
	Events    []notify.Event
	Operation *OperationRecord
	At        time.Time
}

// ErrDuplicateOperation is returned by Commit when the operation ID has
// already been recorded.
var ErrDuplicateOperation = errors.New("operation already recorded")

// LearnerRepo stores per-learner progression state.
type LearnerRepo struct {
	db *sql.DB
}

// Load returns the learner's state. An unknown user yields an empty state.
func (r *LearnerRepo) Load(ctx context.Context, userID string) (LearnerState, error) {
	st := LearnerState{UserID: userID}

	rows, err := r.loadProgress(ctx, userID)
	if err != nil {
		return st, err
	}
	st.Progress = rows

	if st.Hearts, err = r.loadHearts(ctx, userID); err != nil {
		return st, err
	}
	if st.Profile, err = r.loadProfile(ctx, userID); err != nil {
		return st, err
	}
	return st, nil
}

func (r *LearnerRepo) loadProgress(ctx context.Context, userID string) ([]progress.NodeProgress, error) {
	query, args := sqlite.Select("node_id", "status", "stars", "attempts", "best_score", "completed_at", "updated_at").
		From(sqlite.Table(tableProgress)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("node_id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []progress.NodeProgress
	for rows.Next() {
		var (
			p         progress.NodeProgress
			status    string
			completed sql.NullTime
		)
		if err := rows.Scan(&p.NodeID, &status, &p.Stars, &p.Attempts, &p.BestScore, &completed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		p.Status = progress.Status(status)
		p.UpdatedAt = p.UpdatedAt.UTC()
		if completed.Valid {
			p.CompletedAt = completed.Time.UTC()
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *LearnerRepo) loadHearts(ctx context.Context, userID string) (*hearts.State, error) {
	query, args := sqlite.Select("current", "max", "refill_at").
		From(sqlite.Table(tableHearts)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var (
		h        hearts.State
		refillAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&h.Current, &h.Max, &refillAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query hearts: %w", err)
	}
	if refillAt.Valid {
		h.RefillAt = refillAt.Time.UTC()
	}
	return &h, nil
}

func (r *LearnerRepo) loadProfile(ctx context.Context, userID string) (*progress.Profile, error) {
	query, args := sqlite.Select("xp", "streak_days", "last_active_day").
		From(sqlite.Table(tableProfiles)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	p := progress.Profile{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.XP, &p.StreakDays, &p.LastActiveDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// Commit applies w in a single transaction. Events get consecutive
// sequence numbers in slice order.
func (r *LearnerRepo) Commit(ctx context.Context, w Write) (err error) {
	if w.UserID == "" {
		return errors.New("commit: empty user ID")
	}
	at := w.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if w.Operation != nil {
		if err = insertOperation(ctx, tx, w.UserID, *w.Operation, at); err != nil {
			return err
		}
	}
	for _, p := range w.Progress {
		if err = upsertProgress(ctx, tx, w.UserID, p); err != nil {
			return err
		}
	}
	if w.Hearts != nil {
		if err = upsertHearts(ctx, tx, w.UserID, *w.Hearts, at); err != nil {
			return err
		}
	}
	if w.Profile != nil {
		if err = upsertProfile(ctx, tx, w.UserID, *w.Profile, at); err != nil {
			return err
		}
	}
	for _, ev := range w.Events {
		var seq int64
		if seq, err = nextSequence(ctx, tx); err != nil {
			return err
		}
		if err = insertEvent(ctx, tx, seq, ev); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func upsertProgress(ctx context.Context, tx *sql.Tx, userID string, p progress.NodeProgress) error {
	query, args := sqlite.Insert(tableProgress).
		Columns("user_id", "node_id", "status", "stars", "attempts", "best_score", "completed_at", "updated_at").
		Values(userID, p.NodeID, string(p.Status), p.Stars, p.Attempts, p.BestScore, nullable(p.CompletedAt), p.UpdatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "node_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert progress %s: %w", p.NodeID, err)
	}
	return nil
}

func upsertHearts(ctx context.Context, tx *sql.Tx, userID string, h hearts.State, at time.Time) error {
	query, args := sqlite.Insert(tableHearts).
		Columns("user_id", "current", "max", "refill_at", "updated_at").
		Values(userID, h.Current, h.Max, nullable(h.RefillAt), at).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert hearts: %w", err)
	}
	return nil
}

func upsertProfile(ctx context.Context, tx *sql.Tx, userID string, p progress.Profile, at time.Time) error {
	query, args := sqlite.Insert(tableProfiles).
		Columns("user_id", "xp", "streak_days", "last_active_day", "updated_at").
		Values(userID, p.XP, p.StreakDays, p.LastActiveDay, at).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func insertOperation(ctx context.Context, tx *sql.Tx, userID string, op OperationRecord, at time.Time) error {
	var existing string
	query, args := sqlite.Select("operation_id").
		From(sqlite.Table(tableOps)).
		Where(entsql.EQ("operation_id", op.OperationID)).
		Query()
	err := tx.QueryRowContext(ctx, query, args...).Scan(&existing)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDuplicateOperation, op.OperationID)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check operation: %w", err)
	}

	result := op.Result
	if result == nil {
		result = json.RawMessage("null")
	}
	query, args = sqlite.Insert(tableOps).
		Columns("operation_id", "user_id", "kind", "result", "err_code", "created_at").
		Values(op.OperationID, userID, op.Kind, string(result), op.ErrCode, at).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Operation returns the recorded outcome of opID, or nil if it was never
// committed.
func (r *LearnerRepo) Operation(ctx context.Context, opID string) (*OperationRecord, error) {
	query, args := sqlite.Select("operation_id", "user_id", "kind", "result", "err_code", "created_at").
		From(sqlite.Table(tableOps)).
		Where(entsql.EQ("operation_id", opID)).
		Query()
	var (
		op     OperationRecord
		result string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&op.OperationID, &op.UserID, &op.Kind, &result, &op.ErrCode, &op.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query operation: %w", err)
	}
	op.Result = json.RawMessage(result)
	op.CreatedAt = op.CreatedAt.UTC()
	return &op, nil
}

// Reset deletes everything stored for userID and reports the number of
// rows removed.
func (r *LearnerRepo) Reset(ctx context.Context, userID string) (n int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{tableProgress, tableHearts, tableProfiles, tableEvents, tableOps} {
		query, args := sqlite.Delete(table).Where(entsql.EQ("user_id", userID)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("reset %s: %w", table, err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// nullable maps the zero time to NULL.
func nullable(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
