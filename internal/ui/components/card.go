package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// ContentWidth returns the inner width shared by the cards of a screen so
// they line up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 60)
}

// Frame centers content inside a double border filling width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded border at content width cw.
func Card(content string, cw int) string {
	return theme.Card.
		Width(max(cw-2, 0)).
		Align(lipgloss.Center).
		Render(content)
}
