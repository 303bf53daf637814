package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// SummaryScreen shows how a finished quiz went and what it changed.
type SummaryScreen struct {
	outcome engine.QuizOutcome
	node    skillgraph.Node
	graph   *skillgraph.Graph
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a summary for a quiz on node. The graph resolves the names
// of unlocked nodes.
func New(outcome engine.QuizOutcome, node skillgraph.Node, graph *skillgraph.Graph) *SummaryScreen {
	return &SummaryScreen{outcome: outcome, node: node, graph: graph}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.outcome.Summary
	line := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text) + "\n"
	}
	text := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(line(theme.Title, s.heading()))
	b.WriteString(line(dim, s.node.Name))
	b.WriteString("\n")
	b.WriteString(line(text, fmt.Sprintf("Score: %d        Correct: %d of %d",
		sum.Score, sum.CorrectCount, sum.Total)))
	if sum.Answered < sum.Total {
		b.WriteString(line(dim, fmt.Sprintf("%d questions were left unanswered.", sum.Total-sum.Answered)))
	}
	b.WriteString("\n")

	switch sum.Purpose {
	case quiz.PurposeLesson:
		s.writeLesson(&b, line)
	case quiz.PurposeRecovery:
		s.writeRecovery(&b, line)
	default:
		b.WriteString(line(dim, "Practice quizzes do not change your stars or hearts."))
	}
	return b.String()
}

func (s *SummaryScreen) heading() string {
	switch s.outcome.Summary.Purpose {
	case quiz.PurposeRecovery:
		if s.outcome.Recovered {
			return "Hearts refilled!"
		}
		return "Recovery quiz finished"
	case quiz.PurposeLesson:
		if !s.outcome.Passed {
			return "Not quite yet"
		}
		if n := s.outcome.Node; n != nil && n.FirstCompletion {
			return "Lesson complete!"
		}
		return "Quiz complete!"
	default:
		return "Practice complete!"
	}
}

func (s *SummaryScreen) writeLesson(b *strings.Builder, line func(lipgloss.Style, string) string) {
	n := s.outcome.Node
	if n == nil {
		return
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if !s.outcome.Passed {
		b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Text),
			fmt.Sprintf("Score %d or more to pass this lesson.", s.outcome.PassScore)))
		b.WriteString(line(dim, fmt.Sprintf("Attempts so far: %d", n.Attempts)))
		return
	}
	b.WriteString(line(lipgloss.NewStyle(), layout.RenderStars(n.StarsAwarded)))
	switch {
	case n.Improved && n.PreviousBest > 0:
		b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Success),
			fmt.Sprintf("New best! %d, up from %d", n.BestScore, n.PreviousBest)))
	case !n.Improved:
		b.WriteString(line(dim, fmt.Sprintf("Your best is still %d. Keep practising to beat it.", n.BestScore)))
	}
	if n.XPAwarded > 0 {
		b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Accent), fmt.Sprintf("+%d XP", n.XPAwarded)))
	}
	if len(n.UnlockedNodeIDs) > 0 {
		b.WriteString("\n")
		b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true), "Unlocked"))
		for _, id := range n.UnlockedNodeIDs {
			name := id
			if s.graph != nil {
				if node, ok := s.graph.Node(id); ok {
					name = node.Name
				}
			}
			b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Text), "→ "+name))
		}
	}
}

func (s *SummaryScreen) writeRecovery(b *strings.Builder, line func(lipgloss.Style, string) string) {
	h := s.outcome.Hearts
	b.WriteString(line(lipgloss.NewStyle(), layout.RenderHearts(h.Current, h.Max)))
	if s.outcome.Recovered {
		b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Success), "You're ready to keep learning."))
		return
	}
	msg := "Score 50 or more to refill your hearts. Try again any time."
	if !h.RefillAt.IsZero() {
		msg = fmt.Sprintf("Score 50 or more to refill your hearts, or wait until %s.",
			h.RefillAt.Local().Format(time.Kitchen))
	}
	b.WriteString(line(lipgloss.NewStyle().Foreground(theme.TextDim), msg))
}
