package mastery

import "testing"

func TestScoreToStars(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{69, 1},
		{70, 2},
		{89, 2},
		{90, 3},
		{100, 3},
		{150, 3},
	}
	for _, tt := range tests {
		if got := ScoreToStars(tt.score); got != tt.want {
			t.Errorf("ScoreToStars(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestScoreToStars_RangeAndMonotonic(t *testing.T) {
	prev := ScoreToStars(0)
	for s := 0; s <= 100; s++ {
		got := ScoreToStars(s)
		if got < 1 || got > MaxStars {
			t.Fatalf("ScoreToStars(%d) = %d, outside 1..%d", s, got, MaxStars)
		}
		if got < prev {
			t.Fatalf("ScoreToStars(%d) = %d, decreased from %d", s, got, prev)
		}
		prev = got
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		prev, score, want int
	}{
		{0, 80, 80},
		{80, 90, 10},
		{90, 80, 0},
		{90, 90, 0},
		{50, 120, 50},
	}
	for _, tt := range tests {
		if got := Delta(tt.prev, tt.score); got != tt.want {
			t.Errorf("Delta(%d, %d) = %d, want %d", tt.prev, tt.score, got, tt.want)
		}
	}
}

func TestPassed(t *testing.T) {
	if !Passed(50, 50) {
		t.Error("score equal to threshold should pass")
	}
	if Passed(49, 50) {
		t.Error("score below threshold should not pass")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{7, 10, 70},
		{0, 10, 0},
		{10, 10, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestStarBar(t *testing.T) {
	tests := []struct {
		stars int
		want  string
	}{
		{0, "☆☆☆"},
		{2, "★★☆"},
		{3, "★★★"},
		{7, "★★★"},
	}
	for _, tt := range tests {
		if got := StarBar(tt.stars); got != tt.want {
			t.Errorf("StarBar(%d) = %q, want %q", tt.stars, got, tt.want)
		}
	}
}
