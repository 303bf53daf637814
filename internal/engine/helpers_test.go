package engine

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/store"
)

// memRepo is an in-memory Repository with switchable failures.
type memRepo struct {
	mu       sync.Mutex
	progress map[string]map[string]progress.NodeProgress
	hearts   map[string]hearts.State
	profiles map[string]progress.Profile
	events   []notify.Event
	ops      map[string]store.OperationRecord
	commits  int

	failLoad   error
	failCommit error
}

func newMemRepo() *memRepo {
	return &memRepo{
		progress: make(map[string]map[string]progress.NodeProgress),
		hearts:   make(map[string]hearts.State),
		profiles: make(map[string]progress.Profile),
		ops:      make(map[string]store.OperationRecord),
	}
}

func (r *memRepo) Load(_ context.Context, userID string) (store.LearnerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad != nil {
		return store.LearnerState{}, r.failLoad
	}
	st := store.LearnerState{UserID: userID}
	for _, p := range r.progress[userID] {
		st.Progress = append(st.Progress, p)
	}
	slices.SortFunc(st.Progress, func(a, b progress.NodeProgress) int {
		return strings.Compare(a.NodeID, b.NodeID)
	})
	if h, ok := r.hearts[userID]; ok {
		st.Hearts = &h
	}
	if p, ok := r.profiles[userID]; ok {
		st.Profile = &p
	}
	return st, nil
}

func (r *memRepo) Commit(_ context.Context, w store.Write) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCommit != nil {
		return r.failCommit
	}
	if w.Operation != nil {
		if _, ok := r.ops[w.Operation.OperationID]; ok {
			return store.ErrDuplicateOperation
		}
		op := *w.Operation
		op.UserID = w.UserID
		r.ops[op.OperationID] = op
	}
	if len(w.Progress) > 0 && r.progress[w.UserID] == nil {
		r.progress[w.UserID] = make(map[string]progress.NodeProgress)
	}
	for _, p := range w.Progress {
		r.progress[w.UserID][p.NodeID] = p
	}
	if w.Hearts != nil {
		r.hearts[w.UserID] = *w.Hearts
	}
	if w.Profile != nil {
		r.profiles[w.UserID] = *w.Profile
	}
	r.events = append(r.events, w.Events...)
	r.commits++
	return nil
}

func (r *memRepo) Operation(_ context.Context, opID string) (*store.OperationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[opID]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (r *memRepo) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Kind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *memRepo) commitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var t0 = time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

func abcGraph() *skillgraph.Graph {
	return skillgraph.MustNew([]skillgraph.Node{
		{ID: "A", Name: "Alpha", XPReward: 10},
		{ID: "B", Name: "Beta", Prerequisites: []string{"A"}, XPReward: 20},
		{ID: "C", Name: "Gamma", Prerequisites: []string{"B"}, XPReward: 30},
	})
}

// abcBank holds 3 exercises and 10 questions per node. Every item's answer
// is its own ID, so tests can answer correctly from the view alone.
func abcBank() *bank.Static {
	var exercises []bank.Exercise
	var questions []bank.Question
	for _, node := range []string{"A", "B", "C"} {
		for i := range 3 {
			id := node + "/ex-" + string(rune('1'+i))
			exercises = append(exercises, bank.Exercise{
				Item:     bank.Item{ID: id, Prompt: "exercise " + id, Format: bank.FormatText, Answer: []string{id}},
				LessonID: node,
			})
		}
		for i := range 10 {
			id := node + "/q-" + string(rune('a'+i))
			questions = append(questions, bank.Question{
				Item:    bank.Item{ID: id, Prompt: "question " + id, Format: bank.FormatText, Answer: []string{id}},
				TopicID: node,
			})
		}
	}
	return bank.NewStatic(exercises, questions)
}

type failingBank struct{ err error }

func (f failingBank) ExercisesForLesson(context.Context, string) ([]bank.Exercise, error) {
	return nil, f.err
}

func (f failingBank) QuizQuestions(context.Context, string, int) ([]bank.Question, error) {
	return nil, f.err
}

var errDown = errors.New("connection refused")
