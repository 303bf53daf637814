// Package engine is the single entry point the UI layers use for learner
// progression. Each operation loads the learner's state, applies the change
// on copies, and persists everything it touched in one commit.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/rotation"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/store"
)

// Defaults for quiz lengths.
const (
	DefaultQuizQuestions     = 10
	DefaultRecoveryQuestions = 5
	DefaultLessonPassScore   = 50
)

// Repository persists learner state. store.LearnerRepo implements it.
type Repository interface {
	Load(ctx context.Context, userID string) (store.LearnerState, error)
	Commit(ctx context.Context, w store.Write) error
	Operation(ctx context.Context, opID string) (*store.OperationRecord, error)
}

// Options configures an Engine. Graph, Bank and Repo are required.
type Options struct {
	Graph *skillgraph.Graph
	Bank  bank.Bank
	Repo  Repository

	Hearts            hearts.Config
	QuizQuestions     int
	RecoveryQuestions int

	// LessonPassScore is the lowest lesson quiz score that completes the
	// node. Zero selects DefaultLessonPassScore.
	LessonPassScore int

	// Sinks receive every event after it has been committed.
	Sinks  []notify.Sink
	Logger *slog.Logger

	Now  func() time.Time
	Rand *rand.Rand
}

// Engine applies progression operations for any number of learners. It is
// safe for concurrent use; operations are serialized.
type Engine struct {
	graph    *skillgraph.Graph
	bank     bank.Bank
	repo     Repository
	economy  *hearts.Economy
	selector *rotation.Selector
	sink     notify.Sink
	logger   *slog.Logger
	now      func() time.Time

	quizQuestions     int
	recoveryQuestions int
	lessonPassScore   int

	mu      sync.Mutex
	quizzes map[string]*quizEntry
	runs    map[string]*runEntry
}

type quizEntry struct {
	userID  string
	session *quiz.Session
}

type runEntry struct {
	userID string
	run    *rotation.LessonRun
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Graph == nil:
		return nil, errors.New("engine: graph is required")
	case opts.Bank == nil:
		return nil, errors.New("engine: bank is required")
	case opts.Repo == nil:
		return nil, errors.New("engine: repository is required")
	}

	e := &Engine{
		graph:             opts.Graph,
		bank:              opts.Bank,
		repo:              opts.Repo,
		economy:           hearts.NewEconomy(opts.Hearts),
		selector:          rotation.NewSelector(opts.Bank, opts.Rand),
		sink:              notify.Fanout(opts.Sinks),
		logger:            opts.Logger,
		now:               opts.Now,
		quizQuestions:     opts.QuizQuestions,
		recoveryQuestions: opts.RecoveryQuestions,
		lessonPassScore:   opts.LessonPassScore,
		quizzes:           make(map[string]*quizEntry),
		runs:              make(map[string]*runEntry),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.quizQuestions <= 0 {
		e.quizQuestions = DefaultQuizQuestions
	}
	if e.recoveryQuestions <= 0 {
		e.recoveryQuestions = DefaultRecoveryQuestions
	}
	if e.lessonPassScore <= 0 {
		e.lessonPassScore = DefaultLessonPassScore
	}
	return e, nil
}

// LessonPassScore returns the lowest lesson quiz score that completes a node.
func (e *Engine) LessonPassScore() int {
	return e.lessonPassScore
}

// Graph returns the progression graph.
func (e *Engine) Graph() *skillgraph.Graph {
	return e.graph
}

// HeartsConfig returns the effective life economy settings.
func (e *Engine) HeartsConfig() hearts.Config {
	return e.economy.Config()
}

// learner is one learner's state for the duration of an operation.
type learner struct {
	userID  string
	tracker *progress.Tracker
	profile progress.Profile

	hearts      hearts.State
	heartsDirty bool
	events      []notify.Event
}

func (l *learner) emit(kind notify.Kind, at time.Time, data map[string]string) {
	l.events = append(l.events, notify.NewEvent(kind, l.userID, at, data))
}

func (l *learner) setHearts(h hearts.State) {
	if h.Current != l.hearts.Current || h.Max != l.hearts.Max || !h.RefillAt.Equal(l.hearts.RefillAt) {
		l.heartsDirty = true
	}
	l.hearts = h
}

func (l *learner) pending() bool {
	return l.heartsDirty || len(l.events) > 0 ||
		len(l.tracker.Dirty()) > 0 || l.tracker.Profile() != l.profile
}

// load reads the learner and applies lazy state changes: fresh rows for new
// nodes, promotions after graph changes and an expired refill timer.
func (e *Engine) load(ctx context.Context, userID string, now time.Time) (*learner, error) {
	if userID == "" {
		return nil, errors.New("engine: user ID is required")
	}
	st, err := e.repo.Load(ctx, userID)
	if err != nil {
		return nil, storeErr("load", err)
	}

	profile := progress.Profile{UserID: userID}
	if st.Profile != nil {
		profile = *st.Profile
	}
	l := &learner{
		userID:  userID,
		tracker: progress.NewTracker(e.graph, profile, st.Progress, now),
		profile: profile,
	}

	if st.Hearts != nil {
		l.hearts = *st.Hearts
	} else {
		l.hearts = e.economy.NewState()
		l.heartsDirty = true
	}
	h := l.hearts
	if e.economy.Refresh(&h, now) == hearts.Refilled {
		l.emit(notify.KindHeartsRefilled, now, map[string]string{
			"reason":  string(hearts.ReasonTimer),
			"current": fmt.Sprint(h.Current),
		})
	}
	l.setHearts(h)
	return l, nil
}

// commit writes everything the operation changed plus the operation record,
// then forwards the events to the sinks.
func (e *Engine) commit(ctx context.Context, l *learner, op *store.OperationRecord, now time.Time) error {
	if !l.pending() && op == nil {
		return nil
	}
	w := store.Write{
		UserID:    l.userID,
		Progress:  l.tracker.Dirty(),
		Events:    l.events,
		Operation: op,
		At:        now,
	}
	if l.heartsDirty {
		h := l.hearts
		w.Hearts = &h
	}
	if p := l.tracker.Profile(); p != l.profile {
		w.Profile = &p
	}
	if err := e.repo.Commit(ctx, w); err != nil {
		if errors.Is(err, store.ErrDuplicateOperation) {
			return err
		}
		return storeErr("commit", err)
	}

	l.tracker.MarkClean()
	l.profile = l.tracker.Profile()
	l.heartsDirty = false
	for _, ev := range l.events {
		if err := e.sink.Notify(ctx, ev); err != nil {
			e.logger.Warn("notification sink failed",
				"kind", ev.Kind, "user", ev.UserID, "error", err)
		}
	}
	l.events = nil
	return nil
}

// record builds the ledger entry for a mutating operation. An empty opID
// disables replay.
func record(opID, userID, kind string, result any, opErr error, now time.Time) (*store.OperationRecord, error) {
	if opID == "" {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", kind, err)
	}
	return &store.OperationRecord{
		OperationID: opID,
		UserID:      userID,
		Kind:        kind,
		Result:      raw,
		ErrCode:     errCode(opErr),
		CreatedAt:   now,
	}, nil
}

// replay looks up opID and, when it was already applied, decodes its result
// into out. The returned error is the operation's original outcome.
func (e *Engine) replay(ctx context.Context, opID, userID, kind string, out any) (bool, error) {
	if opID == "" {
		return false, nil
	}
	rec, err := e.repo.Operation(ctx, opID)
	if err != nil {
		return false, storeErr("lookup operation", err)
	}
	if rec == nil {
		return false, nil
	}
	if rec.UserID != userID || rec.Kind != kind {
		return true, fmt.Errorf("%w: operation %s already used for %s", ErrInvalidTransition, opID, rec.Kind)
	}
	if err := json.Unmarshal(rec.Result, out); err != nil {
		return true, storeErr("decode operation", err)
	}
	if rec.ErrCode != "" {
		return true, errFromCode(rec.ErrCode, opID)
	}
	return true, nil
}

// HeartsView is a learner's life counter as of a point in time.
type HeartsView struct {
	Current   int           `json:"current"`
	Max       int           `json:"max"`
	Depleted  bool          `json:"depleted"`
	RefillAt  time.Time     `json:"refill_at,omitzero"`
	Remaining time.Duration `json:"remaining"`
}

func (e *Engine) heartsView(s hearts.State, now time.Time) HeartsView {
	return HeartsView{
		Current:   s.Current,
		Max:       s.Max,
		Depleted:  s.Depleted(),
		RefillAt:  s.RefillAt,
		Remaining: e.economy.Remaining(s, now),
	}
}

// commitOp commits l with the ledger entry for an operation and returns its
// outcome. When a concurrent retry recorded the operation first, the stored
// outcome wins.
func commitOp[T any](ctx context.Context, e *Engine, l *learner, opID, kind string, result T, opErr error, now time.Time) (T, error) {
	var zero T
	op, err := record(opID, l.userID, kind, result, opErr, now)
	if err != nil {
		return zero, err
	}
	if err := e.commit(ctx, l, op, now); err != nil {
		if errors.Is(err, store.ErrDuplicateOperation) {
			var prior T
			_, err := e.replay(ctx, opID, l.userID, kind, &prior)
			return prior, err
		}
		return zero, err
	}
	return result, opErr
}
