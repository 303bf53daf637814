package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// ProgressBar shows done out of total as a horizontal bar.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewProgressBar creates a bar Width cells wide including its label.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Width: width}
}

// Fraction returns Done/Total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

func (p ProgressBar) View() string {
	var label string
	if p.Label != "" {
		label = theme.Body.Render(p.Label) + "  "
	}
	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)

	barWidth := max(p.Width-lipgloss.Width(label)-len(count), 4)
	filled := int(float64(barWidth) * p.Fraction())

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
}
