package history

import (
	"context"
	"fmt"
	"image/color"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// pageSize is how many of the most recent events are loaded.
const pageSize = 50

// EventSource reads the progression event log. *store.EventRepo
// implements it.
type EventSource interface {
	QueryEvents(ctx context.Context, opts store.QueryOpts) ([]store.StoredEvent, error)
}

type historyLoadedMsg struct {
	Events []store.StoredEvent
	Err    error
}

// HistoryScreen lists a learner's recent progression events, newest first.
// Enter expands an event to show all of its fields.
type HistoryScreen struct {
	events EventSource
	graph  *skillgraph.Graph
	userID string

	items    []store.StoredEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a history screen. graph names the nodes events refer to.
func New(events EventSource, graph *skillgraph.Graph, userID string) *HistoryScreen {
	return &HistoryScreen{
		events:   events,
		graph:    graph,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events, userID := s.events, s.userID
	return func() tea.Msg {
		evs, err := events.QueryEvents(context.Background(), store.QueryOpts{UserID: userID, Limit: pageSize})
		return historyLoadedMsg{Events: evs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.items = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.items) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing here yet. Finish a lesson to start your history!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, ev := range s.items {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(kindColor(ev.Kind))
		if i == s.selected {
			prefix = "> "
			style = style.Bold(true)
		}
		line := fmt.Sprintf("%s%s  %s", prefix, ev.At.Local().Format("Jan 02 15:04"), s.describe(ev.Event))
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if s.expanded[i] {
			keys := make([]string, 0, len(ev.Data))
			for k := range ev.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if ev.Data[k] == "" {
					continue
				}
				b.WriteString(theme.Hint.Render(fmt.Sprintf("      %-14s %s", k, ev.Data[k])))
				b.WriteString("\n")
			}
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *HistoryScreen) nodeName(id string) string {
	if n, ok := s.graph.Node(id); ok {
		return n.Name
	}
	return id
}

// describe renders one event as a sentence.
func (s *HistoryScreen) describe(ev notify.Event) string {
	d := ev.Data
	switch ev.Kind {
	case notify.KindNodeCompleted:
		text := fmt.Sprintf("Finished %s with %s", s.nodeName(d["node"]), d["score"])
		if d["xp"] != "" && d["xp"] != "0" {
			text += fmt.Sprintf(" (+%s XP)", d["xp"])
		}
		return text
	case notify.KindNodeUnlocked:
		return "Unlocked " + s.nodeName(d["node"])
	case notify.KindHeartsDepleted:
		return "Ran out of hearts"
	case notify.KindHeartsRefilled:
		if d["reason"] == string(hearts.ReasonRecovery) {
			return "Hearts refilled by a recovery quiz"
		}
		return "Hearts refilled"
	case notify.KindQuizFinished:
		return fmt.Sprintf("%s quiz on %s: %s of %s correct",
			titleCase(d["purpose"]), s.nodeName(d["topic"]), d["correct"], d["total"])
	default:
		return string(ev.Kind)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func kindColor(k notify.Kind) color.Color {
	switch k {
	case notify.KindNodeCompleted:
		return theme.Success
	case notify.KindNodeUnlocked:
		return theme.Secondary
	case notify.KindHeartsDepleted:
		return theme.Error
	case notify.KindHeartsRefilled:
		return theme.Heart
	default:
		return theme.Text
	}
}
