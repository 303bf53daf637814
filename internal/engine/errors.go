package engine

import (
	"errors"
	"fmt"

	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/rotation"
)

// Errors returned by the engine. All of them are recoverable: the caller
// shows a message and offers another action. Test with errors.Is.
var (
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrUnknownSession          = errors.New("unknown session")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	ErrUnknownNode          = progress.ErrUnknownNode
	ErrPrerequisitesNotMet  = progress.ErrPrerequisitesNotMet
	ErrOutOfLives           = hearts.ErrOutOfLives
	ErrNoQuestionsAvailable = quiz.ErrNoQuestionsAvailable
	ErrNoExerciseAvailable  = rotation.ErrNoExerciseAvailable
)

// CollaboratorError reports a failure of the bank or the store. It matches
// both ErrCollaboratorUnavailable and the underlying cause.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrCollaboratorUnavailable, e.Err}
}

func storeErr(op string, err error) error {
	return &CollaboratorError{Collaborator: "store", Op: op, Err: err}
}

func bankErr(op string, err error) error {
	return &CollaboratorError{Collaborator: "bank", Op: op, Err: err}
}

// invalid folds the component transition errors into ErrInvalidTransition.
func invalid(err error) error {
	if errors.Is(err, progress.ErrInvalidTransition) || errors.Is(err, quiz.ErrInvalidTransition) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	return err
}

// Error codes stored with replayable operations.
var errorCodes = []struct {
	code string
	err  error
}{
	{"invalid_transition", ErrInvalidTransition},
	{"prerequisites_not_met", ErrPrerequisitesNotMet},
	{"unknown_node", ErrUnknownNode},
	{"out_of_lives", ErrOutOfLives},
	{"no_questions", ErrNoQuestionsAvailable},
	{"no_exercise", ErrNoExerciseAvailable},
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "unknown"
}

func errFromCode(code, opID string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return fmt.Errorf("%w (operation %s)", c.err, opID)
		}
	}
	return fmt.Errorf("operation %s failed with %s", opID, code)
}
