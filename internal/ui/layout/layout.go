package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/mastery"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Stats is the learner summary shown on the right of the header.
type Stats struct {
	Hearts    int
	MaxHearts int
	XP        int
	Streak    int
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight returns the available height for screen content.
func ContentHeight(totalHeight int) int {
	h := totalHeight - HeaderHeight - FooterHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHearts draws one filled heart per remaining life and an empty one
// for each life lost.
func RenderHearts(current, total int) string {
	if total <= 0 {
		return ""
	}
	current = min(max(current, 0), total)
	full := lipgloss.NewStyle().Foreground(theme.Heart).Render(strings.Repeat("♥", current))
	empty := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("♡", total-current))
	return full + empty
}

// RenderStars draws stars out of mastery.MaxStars.
func RenderStars(stars int) string {
	stars = min(max(stars, 0), mastery.MaxStars)
	return lipgloss.NewStyle().Foreground(theme.Star).Render(strings.Repeat("★", stars)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("☆", mastery.MaxStars-stars))
}

// RenderHeader renders the application header bar.
func RenderHeader(title string, s Stats, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  Pathwise")

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	right := RenderHearts(s.Hearts, s.MaxHearts) +
		dim.Render("   ") +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("%d XP", s.XP)) +
		dim.Render("   ") +
		lipgloss.NewStyle().Foreground(theme.Star).Render(fmt.Sprintf("%d day", s.Streak))

	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	innerWidth := max(width-4, 0)

	leftGap := max((innerWidth-centerLen)/2-leftLen, 1)
	rightGap := max(innerWidth-leftLen-leftGap-centerLen-rightLen, 1)

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFooter renders the footer with key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		parts = append(parts, part)
	}

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render("  " + strings.Join(parts, "   "))
}

// RenderFrame composes the full frame: header + content + footer.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	styledContent := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		Render(content)

	return header + "\n" + styledContent + "\n" + footer
}
