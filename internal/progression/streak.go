package progression

import (
	"time"

	"learnpath-backend/internal/domain"
)

// RecordCompletion awards xp and advances the daily streak. Several
// completions on the same calendar day count once for the streak; a gap of
// more than one day starts over at 1.
func RecordCompletion(stats *domain.LearnerStats, xp int, now time.Time) {
	stats.XP += max(xp, 0)

	today := truncateDay(now)
	switch {
	case stats.LastActiveDate == nil:
		stats.StreakDays = 1
	default:
		last := truncateDay(*stats.LastActiveDate)
		switch today.Sub(last) {
		case 0:
		case 24 * time.Hour:
			stats.StreakDays++
		default:
			if today.After(last) {
				stats.StreakDays = 1
			}
		}
	}
	if stats.StreakDays == 0 {
		stats.StreakDays = 1
	}
	if stats.StreakDays > stats.LongestStreak {
		stats.LongestStreak = stats.StreakDays
	}
	if stats.LastActiveDate == nil || today.After(truncateDay(*stats.LastActiveDate)) {
		stats.LastActiveDate = &today
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
