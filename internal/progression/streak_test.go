package progression

import (
	"testing"
	"time"

	"learnpath-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestRecordCompletion(t *testing.T) {
	stats := &domain.LearnerStats{UserID: 1}

	RecordCompletion(stats, 10, day(1, 9))
	assert.Equal(t, 10, stats.XP)
	assert.Equal(t, 1, stats.StreakDays)

	RecordCompletion(stats, 5, day(1, 22))
	assert.Equal(t, 15, stats.XP)
	assert.Equal(t, 1, stats.StreakDays, "same day counts once")

	RecordCompletion(stats, 5, day(2, 8))
	RecordCompletion(stats, 5, day(3, 8))
	assert.Equal(t, 3, stats.StreakDays)
	assert.Equal(t, 3, stats.LongestStreak)

	RecordCompletion(stats, 5, day(6, 8))
	assert.Equal(t, 1, stats.StreakDays, "gap resets the streak")
	assert.Equal(t, 3, stats.LongestStreak)
	assert.Equal(t, day(6, 0), *stats.LastActiveDate)
}

func TestRecordCompletion_IgnoresNegativeXP(t *testing.T) {
	stats := &domain.LearnerStats{XP: 7}
	RecordCompletion(stats, -3, day(1, 0))
	assert.Equal(t, 7, stats.XP)
}

func TestRecordCompletion_ClockSkewKeepsLastDate(t *testing.T) {
	last := day(5, 0)
	stats := &domain.LearnerStats{StreakDays: 4, LongestStreak: 4, LastActiveDate: &last}

	RecordCompletion(stats, 1, day(4, 12))
	assert.Equal(t, 4, stats.StreakDays)
	assert.Equal(t, day(5, 0), *stats.LastActiveDate)
}
