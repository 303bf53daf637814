package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestRenderHearts(t *testing.T) {
	tests := []struct {
		current, total int
		full, empty    int
	}{
		{5, 5, 5, 0},
		{3, 5, 3, 2},
		{0, 5, 0, 5},
		{7, 5, 5, 0},
		{-1, 3, 0, 3},
	}
	for _, tt := range tests {
		got := RenderHearts(tt.current, tt.total)
		if n := strings.Count(got, "♥"); n != tt.full {
			t.Errorf("RenderHearts(%d, %d) full = %d, want %d", tt.current, tt.total, n, tt.full)
		}
		if n := strings.Count(got, "♡"); n != tt.empty {
			t.Errorf("RenderHearts(%d, %d) empty = %d, want %d", tt.current, tt.total, n, tt.empty)
		}
	}
	if RenderHearts(1, 0) != "" {
		t.Error("expected no hearts when max is zero")
	}
}

func TestRenderStars(t *testing.T) {
	for stars := -1; stars <= 4; stars++ {
		got := RenderStars(stars)
		if n := strings.Count(got, "★") + strings.Count(got, "☆"); n != 3 {
			t.Errorf("RenderStars(%d) rendered %d stars, want 3", stars, n)
		}
	}
	if strings.Count(RenderStars(2), "★") != 2 {
		t.Error("expected two filled stars")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Skill Tree", Stats{Hearts: 4, MaxHearts: 5, XP: 120, Streak: 3}, 100)
	for _, want := range []string{"Pathwise", "Skill Tree", "120 XP", "3 day"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if lipgloss.Height(h) != HeaderHeight {
		t.Errorf("header height = %d, want %d", lipgloss.Height(h), HeaderHeight)
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 30) || !IsTooSmall(100, 23) {
		t.Error("expected small terminals to be rejected")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should be accepted")
	}
}
