package skilltree

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/play"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// NodeDetailScreen shows one node and the ways to play it.
type NodeDetailScreen struct {
	eng    *engine.Engine
	userID string
	node   engine.NodeView
	status map[string]progress.Status
	menu   components.Menu
}

var _ screen.Screen = (*NodeDetailScreen)(nil)
var _ screen.KeyHintProvider = (*NodeDetailScreen)(nil)

func newNodeDetail(eng *engine.Engine, userID string, node engine.NodeView, tree engine.TreeView) *NodeDetailScreen {
	d := &NodeDetailScreen{
		eng:    eng,
		userID: userID,
		node:   node,
		status: make(map[string]progress.Status, len(tree.Nodes)),
	}
	d.refresh(tree)
	return d
}

// refresh picks up the node's latest record and its neighbours' statuses.
func (d *NodeDetailScreen) refresh(tree engine.TreeView) {
	for _, n := range tree.Nodes {
		d.status[n.Node.ID] = n.Progress.Status
		if n.Node.ID == d.node.Node.ID {
			d.node = n
		}
	}
	selected := d.menu.Selected
	d.menu = d.buildMenu()
	if selected < len(d.menu.Items) && !d.menu.Items[selected].Disabled {
		d.menu.Selected = selected
	}
}

func (d *NodeDetailScreen) buildMenu() components.Menu {
	locked := d.node.Progress.Status == progress.StatusLocked
	completed := d.node.Progress.Status == progress.StatusCompleted
	id := d.node.Node.ID

	quizLabel := "Take the lesson quiz"
	if completed {
		quizLabel = "Retake the lesson quiz"
	}
	return components.NewMenu([]components.MenuItem{
		{Label: quizLabel, Disabled: locked, Action: d.push(func() screen.Screen {
			return play.NewQuiz(d.eng, d.userID, id, quiz.PurposeLesson)
		})},
		{Label: "Practice exercises", Disabled: locked, Action: d.push(func() screen.Screen {
			return play.NewExercises(d.eng, d.userID, id)
		})},
		{Label: "Practice quiz", Disabled: !completed, Action: d.push(func() screen.Screen {
			return play.NewQuiz(d.eng, d.userID, id, quiz.PurposePractice)
		})},
	})
}

func (d *NodeDetailScreen) push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		s := build()
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

func (d *NodeDetailScreen) Init() tea.Cmd { return nil }
func (d *NodeDetailScreen) Title() string { return d.node.Node.Name }

func (d *NodeDetailScreen) KeyHints() []layout.KeyHint {
	if d.node.Progress.Status == progress.StatusLocked {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *NodeDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.PoppedMsg:
		eng, userID := d.eng, d.userID
		return d, func() tea.Msg {
			t, err := eng.Tree(context.Background(), userID)
			return treeLoadedMsg{Tree: t, Err: err}
		}
	case treeLoadedMsg:
		if msg.Err == nil {
			d.refresh(msg.Tree)
		}
		return d, nil
	}
	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *NodeDetailScreen) View(width, height int) string {
	n := d.node.Node
	p := d.node.Progress
	contentWidth := min(width-8, 70)

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text)
	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("  %s  %s", statusIcon(p.Status), n.Name)))
	b.WriteString("\n")
	b.WriteString(dim.Render("  " + statusLabel(p.Status)))
	b.WriteString("\n\n")

	if n.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(contentWidth).Foreground(theme.Text).PaddingLeft(2).Render(n.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(dim.Render("  Subject:   ") + val.Render(n.Subject.DisplayName()) + "\n")
	b.WriteString(dim.Render("  Grade:     ") + val.Render(skillgraph.GradeLabel(n.GradeLevel)) + "\n")
	b.WriteString(dim.Render("  Reward:    ") + val.Render(fmt.Sprintf("%d XP", n.XPReward)) + "\n")
	if p.Attempts > 0 {
		b.WriteString(dim.Render("  Best:      ") + val.Render(fmt.Sprintf("%d", p.BestScore)) + "  " + layout.RenderStars(p.Stars) + "\n")
		b.WriteString(dim.Render("  Attempts:  ") + val.Render(fmt.Sprintf("%d", p.Attempts)) + "\n")
	}
	b.WriteString("\n")

	graph := d.eng.Graph()
	if prereqs := graph.Prerequisites(n.ID); len(prereqs) > 0 {
		b.WriteString(heading.Render("  Prerequisites"))
		b.WriteString("\n")
		for _, pre := range prereqs {
			icon, style := "○", dim
			if d.status[pre.ID] == progress.StatusCompleted {
				icon, style = "●", lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, pre.Name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if deps := graph.Dependents(n.ID); len(deps) > 0 {
		b.WriteString(heading.Render("  Unlocks"))
		b.WriteString("\n")
		for _, dep := range deps {
			b.WriteString(dim.Render(fmt.Sprintf("  → %s", dep.Name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if p.Status == progress.StatusLocked {
		b.WriteString(theme.Hint.Render("  Complete the prerequisites to unlock this lesson."))
	} else {
		b.WriteString(d.menu.View())
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}

func statusLabel(st progress.Status) string {
	switch st {
	case progress.StatusCompleted:
		return "Completed"
	case progress.StatusCurrent:
		return "Ready to learn"
	default:
		return "Locked"
	}
}
