package play

import (
	"github.com/abhisek/pathwise/internal/engine"
)

type quizStartedMsg struct {
	View engine.QuizView
	Err  error
}

type answerGradedMsg struct {
	Result engine.AnswerResult
	Err    error
}

type quizFinishedMsg struct {
	Outcome engine.QuizOutcome
	Err     error
}

type exerciseServedMsg struct {
	RunID    string
	Exercise engine.ExerciseView
	Err      error
}

type exerciseGradedMsg struct {
	Result engine.ExerciseResult
	Err    error
}

type heartsLoadedMsg struct {
	Hearts engine.HeartsView
	Err    error
}
