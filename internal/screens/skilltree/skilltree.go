package skilltree

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

type rowKind int

const (
	rowSubjectHeader rowKind = iota
	rowNode
)

type row struct {
	kind    rowKind
	subject skillgraph.Subject
	node    engine.NodeView
}

type treeLoadedMsg struct {
	Tree engine.TreeView
	Err  error
}

// SkillTreeScreen lists every node of the learner's tree grouped by
// subject, with its status and stars.
type SkillTreeScreen struct {
	eng    *engine.Engine
	userID string

	tree         engine.TreeView
	rows         []row
	cursor       int
	scrollOffset int
	errMsg       string
}

var _ screen.Screen = (*SkillTreeScreen)(nil)
var _ screen.KeyHintProvider = (*SkillTreeScreen)(nil)

// New creates a skill tree screen. The tree is loaded when shown and again
// whenever a screen above it is closed.
func New(eng *engine.Engine, userID string) *SkillTreeScreen {
	return &SkillTreeScreen{eng: eng, userID: userID}
}

func (s *SkillTreeScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SkillTreeScreen) load() tea.Cmd {
	eng, userID := s.eng, s.userID
	return func() tea.Msg {
		t, err := eng.Tree(context.Background(), userID)
		return treeLoadedMsg{Tree: t, Err: err}
	}
}

func (s *SkillTreeScreen) Title() string {
	return "Skill Tree"
}

func (s *SkillTreeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Subject"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SkillTreeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.setTree(msg.Tree)
	case router.PoppedMsg:
		return s, s.load()
	case tea.KeyMsg:
		if len(s.rows) == 0 {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.jumpSubject(1)
		case "shift+tab":
			s.jumpSubject(-1)
		case "enter":
			return s, s.open()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// setTree rebuilds the rows and keeps the cursor on the same node. On
// first load the cursor starts at the first node the learner can attempt.
func (s *SkillTreeScreen) setTree(t engine.TreeView) {
	var selected string
	if s.cursor < len(s.rows) && s.rows[s.cursor].kind == rowNode {
		selected = s.rows[s.cursor].node.Node.ID
	}
	if selected == "" {
		if cur := t.Current(); len(cur) > 0 {
			selected = cur[0].Node.ID
		}
	}

	s.tree = t
	s.rows = s.rows[:0]
	for _, subject := range skillgraph.AllSubjects() {
		var nodes []engine.NodeView
		for _, n := range t.Nodes {
			if n.Node.Subject == subject {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 {
			continue
		}
		s.rows = append(s.rows, row{kind: rowSubjectHeader, subject: subject})
		for _, n := range nodes {
			s.rows = append(s.rows, row{kind: rowNode, subject: subject, node: n})
		}
	}

	s.cursor = 0
	for i, r := range s.rows {
		if r.kind == rowNode && (selected == "" || r.node.Node.ID == selected) {
			s.cursor = i
			break
		}
	}
}

func (s *SkillTreeScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nCould not load your skill tree: " + s.errMsg)
	}
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\nLoading...")
	}

	s.adjustScroll(height)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < height; i++ {
		r := s.rows[i]
		if r.kind == rowSubjectHeader {
			lines = append(lines, renderSubjectHeader(r.subject, width))
			continue
		}
		lines = append(lines, renderNodeRow(r.node, i == s.cursor, width))
	}
	return strings.Join(lines, "\n")
}

// moveCursor moves by delta, skipping subject headers.
func (s *SkillTreeScreen) moveCursor(delta int) {
	for next := s.cursor + delta; next >= 0 && next < len(s.rows); next += delta {
		if s.rows[next].kind == rowNode {
			s.cursor = next
			return
		}
	}
}

// jumpSubject moves to the first node of the next or previous subject.
func (s *SkillTreeScreen) jumpSubject(dir int) {
	current := s.rows[s.cursor].subject
	var starts []int
	for i, r := range s.rows {
		if r.kind == rowNode && (i == 0 || s.rows[i-1].kind == rowSubjectHeader) {
			starts = append(starts, i)
		}
	}
	for k, i := range starts {
		if s.rows[i].subject != current {
			continue
		}
		if j := k + dir; j >= 0 && j < len(starts) {
			s.cursor = starts[j]
		}
		return
	}
}

// adjustScroll keeps the cursor and its subject header in view.
func (s *SkillTreeScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	top := s.cursor
	for top > 0 && s.rows[top-1].kind == rowSubjectHeader {
		top--
	}
	if top < s.scrollOffset {
		s.scrollOffset = top
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *SkillTreeScreen) open() tea.Cmd {
	r := s.rows[s.cursor]
	if r.kind != rowNode {
		return nil
	}
	detail := newNodeDetail(s.eng, s.userID, r.node, s.tree)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func renderSubjectHeader(subject skillgraph.Subject, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(subject.DisplayName()))
}

func statusIcon(st progress.Status) string {
	switch st {
	case progress.StatusCompleted:
		return theme.Completed.Render("●")
	case progress.StatusCurrent:
		return theme.Current.Render("◉")
	default:
		return theme.Locked.Render("○")
	}
}

func renderNodeRow(n engine.NodeView, selected bool, width int) string {
	nameWidth := max(width-4-3-10-14-4, 10)
	name := n.Node.Name
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	nameStyle := theme.Unselected
	switch {
	case selected:
		nameStyle = theme.Selected
	case n.Progress.Status == progress.StatusLocked:
		nameStyle = theme.Locked
	case n.Progress.Status == progress.StatusCompleted:
		nameStyle = theme.Completed
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	var right string
	switch n.Progress.Status {
	case progress.StatusCompleted:
		right = layout.RenderStars(n.Progress.Stars)
	case progress.StatusCurrent:
		right = theme.Current.Render("  next up")
	default:
		right = theme.Locked.Render("   locked")
	}

	grade := theme.Locked.Render(fmt.Sprintf("Grade %-2s", skillgraph.GradeLabel(n.Node.GradeLevel)))
	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		statusIcon(n.Progress.Status),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		grade,
		right,
	)
}
