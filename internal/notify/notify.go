// Package notify defines the progression events the engine emits and the
// sinks that receive them.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names an event type.
type Kind string

const (
	KindNodeCompleted  Kind = "node_completed"
	KindNodeUnlocked   Kind = "node_unlocked"
	KindHeartsDepleted Kind = "hearts_depleted"
	KindHeartsRefilled Kind = "hearts_refilled"
	KindQuizFinished   Kind = "quiz_finished"
)

// Event is a single notification. Data carries kind-specific details as
// strings so every sink can render them without knowing the kind.
type Event struct {
	ID     string            `json:"id"`
	Kind   Kind              `json:"kind"`
	UserID string            `json:"user_id"`
	At     time.Time         `json:"at"`
	Data   map[string]string `json:"data,omitempty"`
}

// NewEvent returns an event with a fresh ID.
func NewEvent(kind Kind, userID string, at time.Time, data map[string]string) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		UserID: userID,
		At:     at.UTC(),
		Data:   data,
	}
}

// Sink receives events after they have been committed.
type Sink interface {
	Notify(ctx context.Context, ev Event) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Fanout delivers each event to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes events to a structured logger.
type Log struct {
	Logger *slog.Logger
	Level  slog.Level
}

func (l Log) Notify(ctx context.Context, ev Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, 2*len(ev.Data)+4)
	attrs = append(attrs, "kind", string(ev.Kind), "user", ev.UserID)
	for k, v := range ev.Data {
		attrs = append(attrs, k, v)
	}
	logger.Log(ctx, l.Level, "progression event", attrs...)
	return nil
}

// Recorder buffers events in memory. The terminal player drains it to show
// toasts; tests use it to assert what was emitted.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns and clears the buffer.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// Kinds lists the recorded kinds in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}
