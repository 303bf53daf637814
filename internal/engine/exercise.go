package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/rotation"
)

const opSubmitExercise = "submit_exercise"

// ExerciseView is an exercise as shown to the learner, without its answer.
type ExerciseView struct {
	RunID    string      `json:"run_id"`
	LessonID string      `json:"lesson_id"`
	ID       string      `json:"id"`
	Prompt   string      `json:"prompt"`
	Format   bank.Format `json:"format"`
	Choices  []string    `json:"choices,omitempty"`
	Served   int         `json:"served"`
}

// ExerciseResult is the outcome of one submitted exercise.
type ExerciseResult struct {
	Attempt       rotation.Attempt `json:"attempt"`
	CorrectAnswer string           `json:"correct_answer"`
	Explanation   string           `json:"explanation,omitempty"`
	Hearts        HeartsView       `json:"hearts"`
}

// RunSummary describes a finished lesson run.
type RunSummary struct {
	RunID    string             `json:"run_id"`
	LessonID string             `json:"lesson_id"`
	Attempts []rotation.Attempt `json:"attempts"`
	Correct  int                `json:"correct"`
	Served   []string           `json:"served"`
}

func exerciseView(runID string, r *rotation.LessonRun, ex bank.Exercise) ExerciseView {
	return ExerciseView{
		RunID:    runID,
		LessonID: r.LessonID,
		ID:       ex.ID,
		Prompt:   ex.Prompt,
		Format:   ex.Format,
		Choices:  slices.Clone(ex.Choices),
		Served:   len(r.Used()),
	}
}

// StartExercises begins a lesson run for an attemptable node and returns
// its ID. Exercises are never repeated within a run.
func (e *Engine) StartExercises(ctx context.Context, userID, lessonID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return "", err
	}
	if err := l.tracker.CanAttempt(lessonID); err != nil {
		return "", err
	}
	if err := e.commit(ctx, l, nil, now); err != nil {
		return "", err
	}

	id := uuid.NewString()
	e.runs[id] = &runEntry{userID: userID, run: e.selector.NewRun(lessonID)}
	return id, nil
}

func (e *Engine) run(userID, runID string) (*runEntry, error) {
	entry, ok := e.runs[runID]
	if !ok || entry.userID != userID {
		return nil, fmt.Errorf("%w: lesson run %s", ErrUnknownSession, runID)
	}
	return entry, nil
}

// NextExercise serves an exercise not yet seen in the run, or the pending
// one if it has not been answered. ErrNoExerciseAvailable means the lesson
// has nothing left to serve.
func (e *Engine) NextExercise(ctx context.Context, userID, runID string) (ExerciseView, error) {
	return e.serve(ctx, userID, runID, (*rotation.LessonRun).Next)
}

// SkipExercise replaces the pending exercise with an unseen one.
func (e *Engine) SkipExercise(ctx context.Context, userID, runID string) (ExerciseView, error) {
	return e.serve(ctx, userID, runID, (*rotation.LessonRun).Skip)
}

func (e *Engine) serve(ctx context.Context, userID, runID string, pick func(*rotation.LessonRun, context.Context) (bank.Exercise, error)) (ExerciseView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.run(userID, runID)
	if err != nil {
		return ExerciseView{}, err
	}
	ex, err := pick(entry.run, ctx)
	if err != nil {
		if errors.Is(err, ErrNoExerciseAvailable) {
			return ExerciseView{}, err
		}
		return ExerciseView{}, bankErr("load exercises", err)
	}
	return exerciseView(runID, entry.run, ex), nil
}

// SubmitExercise grades the answer to the pending exercise. Lesson
// exercises follow the heart rules of graded quiz answers.
func (e *Engine) SubmitExercise(ctx context.Context, opID, userID, runID string, answer []string) (ExerciseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var prior ExerciseResult
	if done, err := e.replay(ctx, opID, userID, opSubmitExercise, &prior); done {
		return prior, err
	}

	entry, err := e.run(userID, runID)
	if err != nil {
		return ExerciseResult{}, err
	}
	ex, ok := entry.run.Current()
	if !ok {
		return ExerciseResult{}, fmt.Errorf("%w: no exercise pending in run %s", ErrInvalidTransition, runID)
	}
	correct := ex.Check(answer)

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return ExerciseResult{}, err
	}
	if err := e.chargeAnswer(l, correct, now); err != nil {
		return ExerciseResult{}, err
	}

	res := ExerciseResult{
		Attempt: rotation.Attempt{
			ExerciseID:      ex.ID,
			SubmittedAnswer: slices.Clone(answer),
			IsCorrect:       correct,
			UsedExerciseIDs: entry.run.Used(),
		},
		CorrectAnswer: ex.DisplayAnswer(),
		Explanation:   ex.Explanation,
		Hearts:        e.heartsView(l.hearts, now),
	}
	res, err = commitOp(ctx, e, l, opID, opSubmitExercise, res, nil, now)
	if err != nil {
		return res, err
	}
	if _, err := entry.run.Submit(answer); err != nil {
		return res, err
	}
	return res, nil
}

// EndExercises closes a lesson run and summarizes it.
func (e *Engine) EndExercises(userID, runID string) (RunSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.run(userID, runID)
	if err != nil {
		return RunSummary{}, err
	}
	delete(e.runs, runID)
	return RunSummary{
		RunID:    runID,
		LessonID: entry.run.LessonID,
		Attempts: entry.run.Attempts(),
		Correct:  entry.run.Correct(),
		Served:   entry.run.Used(),
	}, nil
}
