package bank

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
)

// Static is an in-memory bank over a fixed set of exercises and questions.
type Static struct {
	exercises map[string][]Exercise
	questions map[string][]Question

	mu  sync.Mutex
	rng *rand.Rand
}

// StaticOption configures a Static bank.
type StaticOption func(*Static)

// WithRand sets the random source used to draw quiz questions.
func WithRand(rng *rand.Rand) StaticOption {
	return func(s *Static) { s.rng = rng }
}

// NewStatic indexes exercises by lesson and questions by topic, keeping the
// given order within each group.
func NewStatic(exercises []Exercise, questions []Question, opts ...StaticOption) *Static {
	s := &Static{
		exercises: make(map[string][]Exercise),
		questions: make(map[string][]Question),
	}
	for _, ex := range exercises {
		s.exercises[ex.LessonID] = append(s.exercises[ex.LessonID], ex)
	}
	for _, q := range questions {
		s.questions[q.TopicID] = append(s.questions[q.TopicID], q)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// ExercisesForLesson returns a copy of the lesson's exercises.
func (s *Static) ExercisesForLesson(_ context.Context, lessonID string) ([]Exercise, error) {
	return slices.Clone(s.exercises[lessonID]), nil
}

// QuizQuestions draws up to count distinct questions for the topic in
// random order.
func (s *Static) QuizQuestions(_ context.Context, topicID string, count int) ([]Question, error) {
	pool := s.questions[topicID]
	if count <= 0 || len(pool) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(pool))
	s.mu.Unlock()

	n := min(count, len(pool))
	out := make([]Question, 0, n)
	for _, i := range perm[:n] {
		out = append(out, pool[i])
	}
	return out, nil
}

// Lessons returns the lesson IDs that have exercises, sorted.
func (s *Static) Lessons() []string {
	ids := make([]string, 0, len(s.exercises))
	for id := range s.exercises {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Topics returns the topic IDs that have questions, sorted.
func (s *Static) Topics() []string {
	ids := make([]string, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
