package mastery

import "math"

// Score bounds and star thresholds.
const (
	MinScore = 0
	MaxScore = 100

	TwoStarScore   = 70
	ThreeStarScore = 90

	// MaxStars is the highest rating a node can carry.
	MaxStars = 3
)

// Clamp bounds a raw score to MinScore..MaxScore.
func Clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// ScoreToStars converts a 0-100 score into a 1-3 star rating.
// Every attempt earns at least one star, including a score of 0.
func ScoreToStars(score int) int {
	score = Clamp(score)
	switch {
	case score >= ThreeStarScore:
		return 3
	case score >= TwoStarScore:
		return 2
	default:
		return 1
	}
}

// Delta returns the mastery gained by score over the previous best.
func Delta(previousBest, score int) int {
	return max(0, Clamp(score)-Clamp(previousBest))
}

// Passed reports whether score meets threshold.
func Passed(score, threshold int) bool {
	return Clamp(score) >= threshold
}

// Percent returns round(100 * correct / total), or 0 for an empty set.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return Clamp(int(math.Round(100 * float64(correct) / float64(total))))
}
