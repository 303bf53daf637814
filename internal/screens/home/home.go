package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/history"
	"github.com/abhisek/pathwise/internal/screens/play"
	"github.com/abhisek/pathwise/internal/screens/skilltree"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

type treeLoadedMsg struct {
	Tree engine.TreeView
	Err  error
}

// HomeScreen is the main menu: the next lesson, the skill tree, practice on
// the weakest completed node, a recovery quiz while hearts are depleted and
// the learner's history.
type HomeScreen struct {
	eng    *engine.Engine
	events history.EventSource
	userID string

	tree   engine.TreeView
	loaded bool
	errMsg string
	menu   components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen for userID. events may be nil, which
// disables the history entry.
func New(eng *engine.Engine, events history.EventSource, userID string) *HomeScreen {
	h := &HomeScreen{eng: eng, events: events, userID: userID}
	h.menu = h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	eng, userID := h.eng, h.userID
	return func() tea.Msg {
		t, err := eng.Tree(context.Background(), userID)
		return treeLoadedMsg{Tree: t, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.tree = msg.Tree
		h.loaded = true
		h.menu = h.buildMenu()
		return h, nil
	case router.PoppedMsg:
		return h, tea.Batch(h.load(), screen.RefreshStats)
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// nextLesson is the first node the learner can attempt.
func (h *HomeScreen) nextLesson() (engine.NodeView, bool) {
	cur := h.tree.Current()
	if len(cur) == 0 {
		return engine.NodeView{}, false
	}
	return cur[0], true
}

// weakest is the completed node with the fewest stars, earliest first.
func (h *HomeScreen) weakest() (engine.NodeView, bool) {
	var best engine.NodeView
	found := false
	for _, n := range h.tree.Nodes {
		if n.Progress.Status != progress.StatusCompleted {
			continue
		}
		if !found || n.Progress.Stars < best.Progress.Stars {
			best, found = n, true
		}
	}
	return best, found
}

func (h *HomeScreen) buildMenu() components.Menu {
	eng, userID := h.eng, h.userID
	depleted := h.tree.Hearts.Depleted

	continueItem := components.MenuItem{Label: "CONTINUE", Disabled: true}
	if n, ok := h.nextLesson(); ok && h.loaded {
		id := n.Node.ID
		continueItem = components.MenuItem{
			Label:    "CONTINUE: " + n.Node.Name,
			Disabled: depleted,
			Action: push(func() screen.Screen {
				return play.NewQuiz(eng, userID, id, quiz.PurposeLesson)
			}),
		}
	} else if h.loaded && h.tree.Completed == len(h.tree.Nodes) {
		continueItem.Label = "ALL LESSONS COMPLETE"
	}

	practiceItem := components.MenuItem{Label: "PRACTICE", Disabled: true}
	if n, ok := h.weakest(); ok {
		id := n.Node.ID
		practiceItem = components.MenuItem{
			Label:    "PRACTICE: " + n.Node.Name,
			Disabled: depleted,
			Action: push(func() screen.Screen {
				return play.NewQuiz(eng, userID, id, quiz.PurposePractice)
			}),
		}
	}

	recoverItem := components.MenuItem{Label: "RECOVER HEARTS", Disabled: true}
	if n, ok := h.recoveryTopic(); ok && depleted {
		id := n.Node.ID
		recoverItem.Disabled = false
		recoverItem.Action = push(func() screen.Screen {
			return play.NewQuiz(eng, userID, id, quiz.PurposeRecovery)
		})
	}

	return components.NewMenu([]components.MenuItem{
		continueItem,
		{Label: "SKILL TREE", Disabled: !h.loaded, Action: push(func() screen.Screen {
			return skilltree.New(eng, userID)
		})},
		practiceItem,
		recoverItem,
		{Label: "HISTORY", Disabled: h.events == nil, Action: push(func() screen.Screen {
			return history.New(h.events, eng.Graph(), userID)
		})},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	})
}

// recoveryTopic picks the node a recovery quiz draws from: the weakest
// completed node, or the next lesson for a learner with none.
func (h *HomeScreen) recoveryTopic() (engine.NodeView, bool) {
	if n, ok := h.weakest(); ok {
		return n, true
	}
	return h.nextLesson()
}

func push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		s := build()
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	title := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Render(theme.Title.Render("P A T H W I S E"))

	var sections []string
	sections = append(sections, title)

	switch {
	case h.errMsg != "":
		sections = append(sections, components.Card(
			lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load progress: "+h.errMsg), cw))
	case h.loaded:
		sections = append(sections, components.Card(h.renderStats(), cw))
	}

	sections = append(sections, components.Card(strings.TrimRight(h.menu.View(), "\n"), cw))
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats() string {
	t := h.tree
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	lines := []string{
		layout.RenderHearts(t.Hearts.Current, t.Hearts.Max),
		fmt.Sprintf("%s %s   %s %s   %s %s",
			val.Render(fmt.Sprintf("%d/%d", t.Completed, len(t.Nodes))), dim.Render("lessons"),
			lipgloss.NewStyle().Foreground(theme.Star).Bold(true).Render(fmt.Sprintf("%d", t.TotalStars)), dim.Render("stars"),
			val.Render(fmt.Sprintf("%d", t.Profile.XP)), dim.Render("XP"),
		),
	}
	if t.Hearts.Depleted {
		msg := "Out of hearts. Pass a recovery quiz to refill"
		if !t.Hearts.RefillAt.IsZero() {
			msg += fmt.Sprintf(", or wait until %s", t.Hearts.RefillAt.Local().Format(time.Kitchen))
		}
		lines = append(lines, theme.Hint.Render(msg+"."))
	}
	return strings.Join(lines, "\n")
}
