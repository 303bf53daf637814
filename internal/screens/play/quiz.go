package play

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/summary"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseFeedback
	phaseConfirmQuit
	phaseOutOfLives
	phaseError
)

// QuizScreen plays one quiz: questions in order, a verdict after each
// answer, then the summary.
type QuizScreen struct {
	eng     *engine.Engine
	userID  string
	node    skillgraph.Node
	purpose quiz.Purpose

	quiz   engine.QuizView
	index  int
	opID   string
	input  answerInput
	result *engine.AnswerResult
	hearts engine.HeartsView

	phase   phase
	confirm components.ButtonRow
	busy    bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// NewQuiz creates a quiz screen for topicID. The quiz is drawn when the
// screen is shown.
func NewQuiz(eng *engine.Engine, userID, topicID string, purpose quiz.Purpose) *QuizScreen {
	node, ok := eng.Graph().Node(topicID)
	if !ok {
		node = skillgraph.Node{ID: topicID, Name: topicID}
	}
	return &QuizScreen{
		eng:     eng,
		userID:  userID,
		node:    node,
		purpose: purpose,
		busy:    true,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	eng, userID, topicID, purpose := s.eng, s.userID, s.node.ID, s.purpose
	return tea.Batch(
		func() tea.Msg {
			v, err := eng.StartQuiz(context.Background(), userID, topicID, purpose, 0)
			return quizStartedMsg{View: v, Err: err}
		},
		loadHearts(eng, userID),
	)
}

func loadHearts(eng *engine.Engine, userID string) tea.Cmd {
	return func() tea.Msg {
		h, err := eng.Hearts(context.Background(), userID)
		return heartsLoadedMsg{Hearts: h, Err: err}
	}
}

func (s *QuizScreen) Title() string {
	switch s.purpose {
	case quiz.PurposeRecovery:
		return "Recovery Quiz"
	case quiz.PurposePractice:
		return "Practice: " + s.node.Name
	default:
		return "Lesson Quiz: " + s.node.Name
	}
}

// HandlesEscape keeps Esc from popping the screen while a quiz is open.
func (s *QuizScreen) HandlesEscape() bool {
	return true
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Quit quiz"},
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "Any key", Description: "Continue"}}
	case phaseConfirmQuit:
		return []layout.KeyHint{
			{Key: "←/→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Keep going"},
		}
	case phaseOutOfLives:
		return []layout.KeyHint{
			{Key: "R", Description: "Recovery quiz"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case heartsLoadedMsg:
		if msg.Err == nil {
			s.hearts = msg.Hearts
		}
		return s, nil
	case quizStartedMsg:
		return s.handleStarted(msg)
	case answerGradedMsg:
		return s.handleGraded(msg)
	case quizFinishedMsg:
		return s.handleFinished(msg)
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

func (s *QuizScreen) handleStarted(msg quizStartedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	switch {
	case errors.Is(msg.Err, engine.ErrOutOfLives):
		s.phase = phaseOutOfLives
		return s, nil
	case errors.Is(msg.Err, engine.ErrNoQuestionsAvailable):
		s.fail("No questions are available for this topic yet.")
		return s, nil
	case msg.Err != nil:
		s.fail(msg.Err.Error())
		return s, nil
	}
	s.quiz = msg.View
	return s, s.showQuestion(0)
}

func (s *QuizScreen) showQuestion(index int) tea.Cmd {
	q := s.quiz.Questions[index]
	s.index = index
	s.input = newAnswerInput(q.Format, q.Choices)
	s.opID = uuid.NewString()
	s.result = nil
	s.notice = ""
	s.phase = phaseQuestion
	return s.input.Init()
}

func (s *QuizScreen) fail(msg string) {
	s.errMsg = msg
	s.phase = phaseError
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	key := msg.String()

	switch s.phase {
	case phaseError:
		return s, pop

	case phaseQuestion:
		if key == "esc" {
			s.confirm = s.quitButtons()
			s.phase = phaseConfirmQuit
			return s, nil
		}
		var cmd tea.Cmd
		var ready bool
		s.input, cmd, ready = s.input.Update(msg)
		if ready {
			return s, s.submit()
		}
		return s, cmd

	case phaseConfirmQuit:
		if key == "esc" {
			s.phase = phaseQuestion
			return s, nil
		}
		var cmd tea.Cmd
		s.confirm, cmd, _ = s.confirm.Update(msg)
		return s, cmd

	case phaseFeedback:
		return s, s.advance()

	case phaseOutOfLives:
		switch key {
		case "r", "R", "enter":
			s.abandon()
			return s, replaceWith(NewQuiz(s.eng, s.userID, s.node.ID, quiz.PurposeRecovery))
		case "esc":
			s.abandon()
			return s, pop
		}
	}
	return s, nil
}

// quitButtons focuses "keep going" so a stray Enter does not end the quiz.
func (s *QuizScreen) quitButtons() components.ButtonRow {
	return components.NewButtonRow(
		components.NewButton("No, keep going", "n", func() tea.Cmd {
			s.phase = phaseQuestion
			return nil
		}),
		components.NewButton("Yes, leave", "y", func() tea.Cmd {
			s.abandon()
			return pop
		}),
	)
}

func (s *QuizScreen) submit() tea.Cmd {
	answer := s.input.Answer()
	if len(answer) == 0 {
		return nil
	}
	s.busy = true
	eng, opID, userID, sessionID, index := s.eng, s.opID, s.userID, s.quiz.ID, s.index
	return func() tea.Msg {
		res, err := eng.SubmitAnswer(context.Background(), opID, userID, sessionID, index, answer)
		return answerGradedMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) handleGraded(msg answerGradedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if errors.Is(msg.Err, engine.ErrOutOfLives) {
		s.phase = phaseOutOfLives
		return s, loadHearts(s.eng, s.userID)
	}
	if msg.Err != nil {
		// The answer was not recorded; the same operation ID makes a retry
		// safe.
		s.notice = fmt.Sprintf("Could not save your answer: %v. Press Enter to try again.", msg.Err)
		s.input.Retry()
		return s, nil
	}

	r := msg.Result
	s.result = &r
	s.hearts = r.Hearts
	s.notice = ""
	s.input.Reveal(r.Correct, r.CorrectAnswer)
	s.phase = phaseFeedback
	if r.Graded {
		return s, screen.RefreshStats
	}
	return s, nil
}

func (s *QuizScreen) advance() tea.Cmd {
	r := s.result
	switch {
	case r == nil:
		return nil
	case r.Completed:
		return s.finish()
	case r.Graded && r.Hearts.Depleted:
		s.phase = phaseOutOfLives
		return nil
	case r.Index+1 < len(s.quiz.Questions):
		return s.showQuestion(r.Index + 1)
	}
	return s.finish()
}

func (s *QuizScreen) finish() tea.Cmd {
	s.busy = true
	s.phase = phaseLoading
	eng, userID, sessionID := s.eng, s.userID, s.quiz.ID
	opID := uuid.NewString()
	return func() tea.Msg {
		out, err := eng.FinishQuiz(context.Background(), opID, userID, sessionID)
		return quizFinishedMsg{Outcome: out, Err: err}
	}
}

func (s *QuizScreen) handleFinished(msg quizFinishedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.fail(msg.Err.Error())
		return s, nil
	}
	next := summary.New(msg.Outcome, s.node, s.eng.Graph())
	return s, tea.Batch(replaceWith(next), screen.RefreshStats)
}

// abandon discards the open session, if any. Hearts already lost stay lost.
func (s *QuizScreen) abandon() {
	if s.quiz.ID == "" {
		return
	}
	_ = s.eng.AbandonQuiz(s.userID, s.quiz.ID)
	s.quiz.ID = ""
}

func pop() tea.Msg {
	return router.PopScreenMsg{}
}

func replaceWith(next screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}
