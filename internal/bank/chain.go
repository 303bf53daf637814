package bank

import (
	"context"
	"errors"
	"fmt"
)

// Chain asks each bank in turn and returns the first non-empty result.
// A failing bank is skipped; its error is reported only when no later bank
// produces content.
type Chain []Bank

func (c Chain) ExercisesForLesson(ctx context.Context, lessonID string) ([]Exercise, error) {
	var errs []error
	for i, b := range c {
		out, err := b.ExercisesForLesson(ctx, lessonID)
		if err != nil {
			errs = append(errs, fmt.Errorf("bank %d: %w", i, err))
			continue
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (c Chain) QuizQuestions(ctx context.Context, topicID string, count int) ([]Question, error) {
	var errs []error
	for i, b := range c {
		out, err := b.QuizQuestions(ctx, topicID, count)
		if err != nil {
			errs = append(errs, fmt.Errorf("bank %d: %w", i, err))
			continue
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, errors.Join(errs...)
}
