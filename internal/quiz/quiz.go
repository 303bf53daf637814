// Package quiz runs a fixed sequence of questions and scores the result.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/mastery"
)

var (
	// ErrNoQuestionsAvailable means the bank had nothing for the topic.
	ErrNoQuestionsAvailable = errors.New("no questions available")

	// ErrInvalidTransition means the operation is not allowed in the
	// session's current state.
	ErrInvalidTransition = errors.New("quiz operation not allowed in current state")
)

// Purpose tells the caller where the summary should be routed.
type Purpose string

const (
	PurposePractice Purpose = "practice"
	PurposeLesson   Purpose = "lesson"
	PurposeRecovery Purpose = "recovery"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposePractice, PurposeLesson, PurposeRecovery:
		return true
	}
	return false
}

// Source supplies quiz questions.
type Source interface {
	QuizQuestions(ctx context.Context, topicID string, count int) ([]bank.Question, error)
}

// AnswerRecord is the learner's answer to one question.
type AnswerRecord struct {
	Answer  []string `json:"answer"`
	Correct bool     `json:"correct"`
}

// Session is one run through a question set. Questions never change after
// Start and answers are only ever added.
type Session struct {
	ID        string
	TopicID   string
	Purpose   Purpose
	StartedAt time.Time

	questions []bank.Question
	answers   map[int]AnswerRecord
	completed bool
}

// Summary is the durable outcome of a session.
type Summary struct {
	SessionID    string  `json:"session_id"`
	TopicID      string  `json:"topic_id"`
	Purpose      Purpose `json:"purpose"`
	Score        int     `json:"score"`
	CorrectCount int     `json:"correct_count"`
	Answered     int     `json:"answered"`
	Total        int     `json:"total"`
}

// Start draws count questions for topicID. It fails with
// ErrNoQuestionsAvailable when the source returns none.
func Start(ctx context.Context, src Source, topicID string, count int) (*Session, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}
	qs, err := src.QuizQuestions(ctx, topicID, count)
	if err != nil {
		return nil, fmt.Errorf("draw questions for %q: %w", topicID, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("topic %q: %w", topicID, ErrNoQuestionsAvailable)
	}
	if len(qs) > count {
		qs = qs[:count]
	}
	return &Session{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		Purpose:   PurposePractice,
		StartedAt: time.Now(),
		questions: slices.Clone(qs),
		answers:   make(map[int]AnswerRecord, len(qs)),
	}, nil
}

// Questions returns the question sequence.
func (s *Session) Questions() []bank.Question {
	return slices.Clone(s.questions)
}

// Question returns the question at index.
func (s *Session) Question(index int) (bank.Question, bool) {
	if index < 0 || index >= len(s.questions) {
		return bank.Question{}, false
	}
	return s.questions[index], true
}

// Total returns the number of questions.
func (s *Session) Total() int {
	return len(s.questions)
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	return s.completed
}

// Answer returns the record for index, if answered.
func (s *Session) Answer(index int) (AnswerRecord, bool) {
	a, ok := s.answers[index]
	return a, ok
}

// Answered returns the number of answered questions.
func (s *Session) Answered() int {
	return len(s.answers)
}

// NextUnanswered returns the lowest unanswered index, or false when every
// question has an answer or the session is completed.
func (s *Session) NextUnanswered() (int, bool) {
	if s.completed {
		return 0, false
	}
	for i := range s.questions {
		if _, ok := s.answers[i]; !ok {
			return i, true
		}
	}
	return 0, false
}

// SubmitAnswer grades answer for question index. It is valid only while
// the session is in progress and the question is unanswered. Answering the
// last open question completes the session.
func (s *Session) SubmitAnswer(index int, answer []string) (bool, error) {
	if err := s.CanSubmit(index); err != nil {
		return false, err
	}

	correct := s.questions[index].Check(answer)
	s.answers[index] = AnswerRecord{Answer: slices.Clone(answer), Correct: correct}
	if len(s.answers) == len(s.questions) {
		s.completed = true
	}
	return correct, nil
}

// CanSubmit reports whether question index may be answered now.
func (s *Session) CanSubmit(index int) error {
	if s.completed {
		return fmt.Errorf("%w: session %s is completed", ErrInvalidTransition, s.ID)
	}
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: question %d out of range [0, %d)", ErrInvalidTransition, index, len(s.questions))
	}
	if _, ok := s.answers[index]; ok {
		return fmt.Errorf("%w: question %d already answered", ErrInvalidTransition, index)
	}
	return nil
}

// End completes the session early. Unanswered questions count as incorrect.
func (s *Session) End() {
	s.completed = true
}

// Finish returns the summary. It is valid only once the session is completed.
func (s *Session) Finish() (Summary, error) {
	if !s.completed {
		return Summary{}, fmt.Errorf("%w: session %s still in progress", ErrInvalidTransition, s.ID)
	}
	correct := 0
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return Summary{
		SessionID:    s.ID,
		TopicID:      s.TopicID,
		Purpose:      s.Purpose,
		Score:        mastery.Percent(correct, len(s.questions)),
		CorrectCount: correct,
		Answered:     len(s.answers),
		Total:        len(s.questions),
	}, nil
}
