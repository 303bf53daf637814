package progress

import "time"

const dayLayout = "2006-01-02"

// Day returns the UTC calendar day of t as YYYY-MM-DD.
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// touchStreak records activity on the day of now. Consecutive days extend
// the streak; a gap of more than one day restarts it at 1.
func (p *Profile) touchStreak(now time.Time) {
	today := Day(now)
	switch p.LastActiveDay {
	case today:
		if p.StreakDays == 0 {
			p.StreakDays = 1
		}
		return
	case Day(now.UTC().AddDate(0, 0, -1)):
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastActiveDay = today
}

// ActiveStreak returns the streak as of now: a streak whose last active day
// is before yesterday has lapsed and counts as 0.
func (p Profile) ActiveStreak(now time.Time) int {
	switch p.LastActiveDay {
	case Day(now), Day(now.UTC().AddDate(0, 0, -1)):
		return p.StreakDays
	default:
		return 0
	}
}
