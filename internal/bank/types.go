package bank

import "context"

// Format describes how the learner provides an answer.
type Format string

const (
	// FormatText means the learner types a single answer.
	FormatText Format = "text"

	// FormatMultipleChoice means the learner picks one of Choices.
	FormatMultipleChoice Format = "multiple_choice"

	// FormatMultiSelect means the learner picks every correct entry of
	// Choices. Order does not matter.
	FormatMultiSelect Format = "multi_select"
)

// Item is the content shared by exercises and quiz questions.
type Item struct {
	ID string `json:"id"`

	// Prompt is the text shown to the learner.
	Prompt string `json:"prompt"`

	Format Format `json:"format"`

	// Choices is populated for multiple choice and multi-select items.
	Choices []string `json:"choices,omitempty"`

	// Answer holds the correct answer. Text and multiple choice items carry
	// exactly one entry; multi-select items carry one entry per correct choice.
	Answer []string `json:"answer"`

	// Explanation is a short worked solution shown after answering.
	Explanation string `json:"explanation,omitempty"`
}

// Exercise is a practice item served inside a lesson.
type Exercise struct {
	Item
	LessonID string `json:"lesson_id"`
}

// Question is a quiz item drawn for a topic.
type Question struct {
	Item
	TopicID string `json:"topic_id"`
}

// Bank supplies lesson exercises and quiz questions.
type Bank interface {
	// ExercisesForLesson returns every exercise available for a lesson.
	// An empty slice with a nil error means the lesson has no content.
	ExercisesForLesson(ctx context.Context, lessonID string) ([]Exercise, error)

	// QuizQuestions draws up to count questions for a topic.
	QuizQuestions(ctx context.Context, topicID string, count int) ([]Question, error)
}
