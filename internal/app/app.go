package app

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/history"
	"github.com/abhisek/pathwise/internal/screens/home"
	"github.com/abhisek/pathwise/internal/screens/welcome"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

type statsLoadedMsg struct {
	Stats layout.Stats
	Err   error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	eng    *engine.Engine
	userID string
	logger *slog.Logger

	router *router.Router
	stats  layout.Stats
	width  int
	height int
}

// newAppModel creates the root model, starting on the welcome splash
// unless opts.SkipSplash is set.
func newAppModel(eng *engine.Engine, userID string, opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newHome := func() screen.Screen { return home.New(eng, opts.Events, userID) }
	first := newHome()
	if !opts.SkipSplash {
		first = welcome.New(newHome)
	}
	return AppModel{
		eng:    eng,
		userID: userID,
		logger: logger,
		router: router.New(first),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadStats(), m.router.Active().Init())
}

func (m AppModel) loadStats() tea.Cmd {
	eng, userID := m.eng, m.userID
	return func() tea.Msg {
		t, err := eng.Tree(context.Background(), userID)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Stats: layout.Stats{
			Hearts:    t.Hearts.Current,
			MaxHearts: t.Hearts.Max,
			XP:        t.Profile.XP,
			Streak:    t.Streak,
		}}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statsLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to load header stats", "user", m.userID, "error", msg.Err)
			return m, nil
		}
		m.stats = msg.Stats
		return m, nil

	case screen.RefreshStatsMsg:
		return m, m.loadStats()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Any key", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.router.Active().Title(), m.stats, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Options tunes the terminal player.
type Options struct {
	Logger *slog.Logger
	// Events backs the history screen; nil hides it.
	Events     history.EventSource
	SkipSplash bool
}

// Run plays the skill tree of userID in the terminal until the learner
// quits or ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, userID string, opts Options) error {
	p := tea.NewProgram(newAppModel(eng, userID, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal player: %w", err)
	}
	return nil
}
