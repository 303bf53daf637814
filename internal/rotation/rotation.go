// Package rotation serves unseen replacement exercises within a lesson.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/pathwise/internal/bank"
)

// ErrNoExerciseAvailable means every exercise for the lesson has already
// been served in this run.
var ErrNoExerciseAvailable = errors.New("no more exercises available")

// Source supplies the exercises of a lesson.
type Source interface {
	ExercisesForLesson(ctx context.Context, lessonID string) ([]bank.Exercise, error)
}

// Selector picks replacement exercises uniformly at random.
type Selector struct {
	src Source

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector. A nil rng uses a randomly seeded source.
func NewSelector(src Source, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{src: src, rng: rng}
}

// SelectReplacement returns a random exercise of the lesson whose ID is not
// in used, or ErrNoExerciseAvailable when none remain. The caller is
// responsible for adding the returned ID to used.
func (s *Selector) SelectReplacement(ctx context.Context, lessonID string, used map[string]bool) (bank.Exercise, error) {
	all, err := s.src.ExercisesForLesson(ctx, lessonID)
	if err != nil {
		return bank.Exercise{}, fmt.Errorf("load exercises for %q: %w", lessonID, err)
	}

	var candidates []bank.Exercise
	for _, ex := range all {
		if !used[ex.ID] {
			candidates = append(candidates, ex)
		}
	}
	if len(candidates) == 0 {
		return bank.Exercise{}, fmt.Errorf("lesson %q: %w", lessonID, ErrNoExerciseAvailable)
	}

	s.mu.Lock()
	i := s.rng.IntN(len(candidates))
	s.mu.Unlock()
	return candidates[i], nil
}

// Attempt records one answered exercise within a run.
type Attempt struct {
	ExerciseID      string   `json:"exercise_id"`
	SubmittedAnswer []string `json:"submitted_answer"`
	IsCorrect       bool     `json:"is_correct"`
	UsedExerciseIDs []string `json:"used_exercise_ids"`
}

// LessonRun tracks one attempt at a lesson. Exercises are never repeated
// within a run; a new run starts with an empty used set.
type LessonRun struct {
	LessonID string

	sel      *Selector
	used     map[string]bool
	current  *bank.Exercise
	attempts []Attempt
}

// NewRun starts a run for lessonID.
func (s *Selector) NewRun(lessonID string) *LessonRun {
	return &LessonRun{
		LessonID: lessonID,
		sel:      s,
		used:     make(map[string]bool),
	}
}

// Next serves an unseen exercise and marks it used. It returns the
// currently pending exercise again if the previous one was not answered.
func (r *LessonRun) Next(ctx context.Context) (bank.Exercise, error) {
	if r.current != nil {
		return *r.current, nil
	}
	ex, err := r.sel.SelectReplacement(ctx, r.LessonID, r.used)
	if err != nil {
		return bank.Exercise{}, err
	}
	r.used[ex.ID] = true
	r.current = &ex
	return ex, nil
}

// Skip discards the pending exercise without an attempt and serves a
// replacement. The skipped exercise stays used.
func (r *LessonRun) Skip(ctx context.Context) (bank.Exercise, error) {
	r.current = nil
	return r.Next(ctx)
}

// Current returns the pending exercise, if any.
func (r *LessonRun) Current() (bank.Exercise, bool) {
	if r.current == nil {
		return bank.Exercise{}, false
	}
	return *r.current, true
}

// Grade checks answer against the pending exercise without recording it.
func (r *LessonRun) Grade(answer []string) (bool, error) {
	if r.current == nil {
		return false, errors.New("no exercise pending")
	}
	return r.current.Check(answer), nil
}

// Submit grades and records answer for the pending exercise.
func (r *LessonRun) Submit(answer []string) (Attempt, error) {
	correct, err := r.Grade(answer)
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{
		ExerciseID:      r.current.ID,
		SubmittedAnswer: slices.Clone(answer),
		IsCorrect:       correct,
		UsedExerciseIDs: r.Used(),
	}
	r.attempts = append(r.attempts, a)
	r.current = nil
	return a, nil
}

// Used returns the IDs served so far, sorted.
func (r *LessonRun) Used() []string {
	ids := make([]string, 0, len(r.used))
	for id := range r.used {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Attempts returns the recorded attempts in order.
func (r *LessonRun) Attempts() []Attempt {
	return slices.Clone(r.attempts)
}

// Correct counts correct attempts.
func (r *LessonRun) Correct() int {
	n := 0
	for _, a := range r.attempts {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
