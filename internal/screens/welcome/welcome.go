package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	stepEvery    = 300 * time.Millisecond
	bannerAt     = 1800 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

// pathSteps are drawn one at a time, ending at the goal star.
var pathSteps = []string{"●", "●", "◉", "○", "○", "★"}

type tickMsg time.Time

// WelcomeScreen draws a short splash and hands over to the home screen on
// the first key press.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that is replaced by homeFactory's screen.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{homeFactory: homeFactory}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

// steps reports how many path steps are drawn so far.
func (w *WelcomeScreen) steps() int {
	return min(int(w.elapsed/stepEvery), len(pathSteps))
}

func (w *WelcomeScreen) View(width, height int) string {
	var path []string
	for i := range w.steps() {
		style := theme.Completed
		switch {
		case i == len(pathSteps)-1:
			style = lipgloss.NewStyle().Foreground(theme.Star).Bold(true)
		case pathSteps[i] == "◉":
			style = theme.Current
		case pathSteps[i] == "○":
			style = theme.Locked
		}
		path = append(path, style.Render(pathSteps[i]))
	}
	sections := []string{strings.Join(path, theme.Locked.Render(" ── "))}

	if w.elapsed >= bannerAt {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("One lesson at a time."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
