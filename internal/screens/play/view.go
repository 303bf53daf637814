package play

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

func center(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

func (s *QuizScreen) View(width, height int) string {
	switch s.phase {
	case phaseError:
		return renderError(width, s.errMsg)
	case phaseOutOfLives:
		return renderOutOfLives(width, s.hearts, s.purpose != quiz.PurposeRecovery)
	case phaseConfirmQuit:
		return renderQuitConfirm(width, s.confirm)
	}
	if len(s.quiz.Questions) == 0 || s.phase == phaseLoading {
		return renderLoading(width, s.busy && s.quiz.ID != "")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")

	q := s.quiz.Questions[s.index]
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(s.input.View(width))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Error), s.notice))
		b.WriteString("\n\n")
	}
	if s.phase == phaseFeedback && s.result != nil {
		b.WriteString(renderVerdict(width, s.result.Correct, s.result.CorrectAnswer, s.result.Explanation))
	}
	return b.String()
}

// renderInfoLine shows question progress on the left and hearts on the
// right. Recovery quizzes cost nothing, so they show the pass mark instead.
func (s *QuizScreen) renderInfoLine(width int) string {
	answered := s.index
	if s.result != nil {
		answered = s.result.Answered
	}
	bar := components.NewProgressBar(
		fmt.Sprintf("Q %d/%d", s.index+1, len(s.quiz.Questions)),
		answered, len(s.quiz.Questions), min(40, width/2),
	).View()

	right := layout.RenderHearts(s.hearts.Current, s.hearts.Max)
	if s.purpose == quiz.PurposeRecovery {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render("Score 50 or more to refill your hearts")
	}

	gap := max(width-lipgloss.Width(bar)-lipgloss.Width(right)-4, 1)
	return "  " + bar + strings.Repeat(" ", gap) + right
}

func renderVerdict(width int, correct bool, answer, explanation string) string {
	var b strings.Builder
	if correct {
		b.WriteString(center(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(center(width, theme.Incorrect, "Not quite"))
		b.WriteString("\n")
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Correct answer: "+answer))
	}
	b.WriteString("\n\n")
	if explanation != "" {
		exp := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Press any key to continue..."))
	return b.String()
}

func renderOutOfLives(width int, h engine.HeartsView, offerRecovery bool) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Heart).Bold(true), "Out of hearts!"))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle(), layout.RenderHearts(0, h.Max)))
	b.WriteString("\n\n")

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if !h.RefillAt.IsZero() {
		b.WriteString(center(width, dim, fmt.Sprintf("Your hearts refill at %s (in %s).",
			h.RefillAt.Local().Format(time.Kitchen), h.Remaining.Round(time.Minute))))
		b.WriteString("\n\n")
	}
	if offerRecovery {
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Success), "[R] Take a recovery quiz to refill them now"))
		b.WriteString("\n")
	}
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Primary), "[Esc] Back"))
	return b.String()
}

func renderQuitConfirm(width int, buttons components.ButtonRow) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave this quiz?"))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Your answers will not count. Hearts you lost stay lost."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons.View()))
	return b.String()
}

func renderLoading(width int, scoring bool) string {
	msg := "Getting your questions ready..."
	if scoring {
		msg = "Adding up your score..."
	}
	return center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\n"+msg)
}

func renderError(width int, errMsg string) string {
	return center(width, lipgloss.NewStyle().Foreground(theme.Error),
		fmt.Sprintf("\n\n\nSomething went wrong: %s\n\nPress any key to go back.", errMsg))
}
