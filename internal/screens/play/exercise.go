package play

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// phaseDone follows the last exercise of a lesson.
const phaseDone = phaseError + 1

// ExerciseScreen serves a lesson's exercises one at a time, never repeating
// one, until the learner stops or the lesson runs out.
type ExerciseScreen struct {
	eng    *engine.Engine
	userID string
	node   skillgraph.Node

	runID   string
	ex      engine.ExerciseView
	opID    string
	input   answerInput
	result  *engine.ExerciseResult
	hearts  engine.HeartsView
	summary engine.RunSummary

	phase  phase
	busy   bool
	notice string
	errMsg string
}

var _ screen.Screen = (*ExerciseScreen)(nil)
var _ screen.KeyHintProvider = (*ExerciseScreen)(nil)
var _ screen.EscapeHandler = (*ExerciseScreen)(nil)

// NewExercises creates an exercise screen for lessonID.
func NewExercises(eng *engine.Engine, userID, lessonID string) *ExerciseScreen {
	node, ok := eng.Graph().Node(lessonID)
	if !ok {
		node = skillgraph.Node{ID: lessonID, Name: lessonID}
	}
	return &ExerciseScreen{eng: eng, userID: userID, node: node, busy: true}
}

func (s *ExerciseScreen) Init() tea.Cmd {
	eng, userID, lessonID := s.eng, s.userID, s.node.ID
	return tea.Batch(
		func() tea.Msg {
			ctx := context.Background()
			runID, err := eng.StartExercises(ctx, userID, lessonID)
			if err != nil {
				return exerciseServedMsg{Err: err}
			}
			ex, err := eng.NextExercise(ctx, userID, runID)
			return exerciseServedMsg{RunID: runID, Exercise: ex, Err: err}
		},
		loadHearts(eng, userID),
	)
}

func (s *ExerciseScreen) Title() string {
	return "Exercises: " + s.node.Name
}

func (s *ExerciseScreen) HandlesEscape() bool {
	return true
}

func (s *ExerciseScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Answer"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "Stop"},
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "Any key", Description: "Next"}}
	case phaseOutOfLives:
		return []layout.KeyHint{
			{Key: "R", Description: "Recovery quiz"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
}

func (s *ExerciseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case heartsLoadedMsg:
		if msg.Err == nil {
			s.hearts = msg.Hearts
		}
		return s, nil
	case exerciseServedMsg:
		return s.handleServed(msg)
	case exerciseGradedMsg:
		return s.handleGraded(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	if s.phase == phaseQuestion {
		var cmd tea.Cmd
		s.input, cmd, _ = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExerciseScreen) handleServed(msg exerciseServedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.RunID != "" {
		s.runID = msg.RunID
	}
	switch {
	case errors.Is(msg.Err, engine.ErrNoExerciseAvailable):
		s.end()
		s.phase = phaseDone
		return s, nil
	case msg.Err != nil:
		s.end()
		s.errMsg = msg.Err.Error()
		s.phase = phaseError
		return s, nil
	}
	s.ex = msg.Exercise
	s.input = newAnswerInput(s.ex.Format, s.ex.Choices)
	s.opID = uuid.NewString()
	s.result = nil
	s.notice = ""
	s.phase = phaseQuestion
	return s, s.input.Init()
}

func (s *ExerciseScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	key := msg.String()

	switch s.phase {
	case phaseError, phaseDone:
		return s, pop

	case phaseQuestion:
		switch key {
		case "esc":
			s.end()
			return s, pop
		case "tab":
			return s, s.serve((*engine.Engine).SkipExercise)
		}
		var cmd tea.Cmd
		var ready bool
		s.input, cmd, ready = s.input.Update(msg)
		if ready {
			return s, s.submit()
		}
		return s, cmd

	case phaseFeedback:
		if s.result != nil && s.result.Hearts.Depleted {
			s.phase = phaseOutOfLives
			return s, nil
		}
		return s, s.serve((*engine.Engine).NextExercise)

	case phaseOutOfLives:
		switch key {
		case "r", "R", "enter":
			s.end()
			return s, replaceWith(NewQuiz(s.eng, s.userID, s.node.ID, quiz.PurposeRecovery))
		case "esc":
			s.end()
			return s, pop
		}
	}
	return s, nil
}

func (s *ExerciseScreen) serve(pick func(*engine.Engine, context.Context, string, string) (engine.ExerciseView, error)) tea.Cmd {
	s.busy = true
	eng, userID, runID := s.eng, s.userID, s.runID
	return func() tea.Msg {
		ex, err := pick(eng, context.Background(), userID, runID)
		return exerciseServedMsg{Exercise: ex, Err: err}
	}
}

func (s *ExerciseScreen) submit() tea.Cmd {
	answer := s.input.Answer()
	if len(answer) == 0 {
		return nil
	}
	s.busy = true
	eng, opID, userID, runID := s.eng, s.opID, s.userID, s.runID
	return func() tea.Msg {
		res, err := eng.SubmitExercise(context.Background(), opID, userID, runID, answer)
		return exerciseGradedMsg{Result: res, Err: err}
	}
}

func (s *ExerciseScreen) handleGraded(msg exerciseGradedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if errors.Is(msg.Err, engine.ErrOutOfLives) {
		s.phase = phaseOutOfLives
		return s, loadHearts(s.eng, s.userID)
	}
	if msg.Err != nil {
		s.notice = fmt.Sprintf("Could not save your answer: %v. Press Enter to try again.", msg.Err)
		s.input.Retry()
		return s, nil
	}
	r := msg.Result
	s.result = &r
	s.hearts = r.Hearts
	s.input.Reveal(r.Attempt.IsCorrect, r.CorrectAnswer)
	s.phase = phaseFeedback
	return s, screen.RefreshStats
}

// end closes the lesson run and keeps its summary for the done view.
func (s *ExerciseScreen) end() {
	if s.runID == "" {
		return
	}
	if sum, err := s.eng.EndExercises(s.userID, s.runID); err == nil {
		s.summary = sum
	}
	s.runID = ""
}

func (s *ExerciseScreen) View(width, height int) string {
	switch s.phase {
	case phaseError:
		return renderError(width, s.errMsg)
	case phaseOutOfLives:
		return renderOutOfLives(width, s.hearts, true)
	case phaseDone:
		return s.renderDone(width)
	}
	if s.ex.ID == "" {
		return renderLoading(width, false)
	}

	var b strings.Builder
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("Exercise %d", s.ex.Served))
	right := layout.RenderHearts(s.hearts.Current, s.hearts.Max)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-4, 1)
	b.WriteString("  " + left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n\n")

	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), s.ex.Prompt))
	b.WriteString("\n\n")
	b.WriteString(s.input.View(width))
	b.WriteString("\n\n")
	if s.notice != "" {
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Error), s.notice))
		b.WriteString("\n\n")
	}
	if s.phase == phaseFeedback && s.result != nil {
		b.WriteString(renderVerdict(width, s.result.Attempt.IsCorrect, s.result.CorrectAnswer, s.result.Explanation))
	}
	return b.String()
}

func (s *ExerciseScreen) renderDone(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(center(width, theme.Title, "You finished every exercise in this lesson!"))
	b.WriteString("\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Correct: %d of %d", s.summary.Correct, len(s.summary.Attempts))))
	b.WriteString("\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim),
		"Take the lesson quiz to earn stars. Press any key to go back."))
	return b.String()
}
