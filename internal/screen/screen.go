package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Screen is one page of the terminal player.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of letting the app pop them, for example to confirm leaving a
// quiz.
type EscapeHandler interface {
	HandlesEscape() bool
}

// RefreshStatsMsg asks the app to reload the totals shown in the header.
type RefreshStatsMsg struct{}

// RefreshStats is a tea.Cmd that emits RefreshStatsMsg.
func RefreshStats() tea.Msg {
	return RefreshStatsMsg{}
}
