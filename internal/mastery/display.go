package mastery

import "strings"

// StarBar renders a star count as filled and empty glyphs, e.g. "★★☆".
func StarBar(stars int) string {
	stars = max(0, min(MaxStars, stars))
	return strings.Repeat("★", stars) + strings.Repeat("☆", MaxStars-stars)
}
