package progression

import (
	"math"
	"time"

	"learnpath-backend/internal/domain"
)

const (
	// CompletionThreshold is the percentage at which a lesson counts as completed.
	CompletionThreshold = 90
	// SyncInterval is the media time, in seconds, between two position syncs.
	SyncInterval = 10
)

// PlaybackPercentage converts a media position into a 0-100 percentage.
func PlaybackPercentage(position, duration float64) int {
	if duration <= 0 || position <= 0 {
		return 0
	}
	pct := int(math.Round(100 * position / duration))
	return clampPercent(pct)
}

// DueForSync reports whether enough media time passed since the last sync.
// Seeking backwards by more than the interval also counts.
func DueForSync(lastSynced, current float64) bool {
	return math.Abs(current-lastSynced) >= SyncInterval
}

// ApplyPlayback folds a playback tick into p.
func ApplyPlayback(p domain.LessonProgress, position, duration float64, now time.Time) domain.LessonProgress {
	merged, _ := Merge(p, domain.ProgressUpdate{
		StudentID:    p.UserID,
		LessonID:     p.LessonID,
		Percentage:   PlaybackPercentage(position, duration),
		LastPosition: int(position),
		Status:       domain.StatusInProgress,
	}, now)
	return merged
}

// Merge applies an incoming update on top of the existing record. Completed
// is sticky: once reached the status never goes back and the percentage
// never drops. A started lesson never returns to not_started. The second result is true when this update is the one that
// completed the lesson.
func Merge(existing domain.LessonProgress, in domain.ProgressUpdate, now time.Time) (domain.LessonProgress, bool) {
	out := existing
	out.UserID = in.StudentID
	out.LessonID = in.LessonID
	out.LastPosition = max(in.LastPosition, 0)

	wasCompleted := existing.Status == domain.StatusCompleted
	pct := clampPercent(in.Percentage)

	status := in.Status
	switch {
	case pct >= CompletionThreshold:
		status = domain.StatusCompleted
	case status == domain.StatusCompleted:
		// An explicit completion counts as a full watch.
		pct = 100
	case status == "" || status == domain.StatusNotStarted:
		if pct > 0 || in.LastPosition > 0 || existing.Status == domain.StatusInProgress {
			status = domain.StatusInProgress
		} else {
			status = domain.StatusNotStarted
		}
	}

	if wasCompleted {
		out.Status = domain.StatusCompleted
		out.Percentage = max(existing.Percentage, pct)
		return out, false
	}

	out.Status = status
	out.Percentage = pct
	if status == domain.StatusCompleted {
		t := now
		out.CompletedAt = &t
		return out, true
	}
	return out, false
}

// MarkComplete forces completion at 100%.
func MarkComplete(existing domain.LessonProgress, studentID uint, lessonID string, now time.Time) (domain.LessonProgress, bool) {
	return Merge(existing, domain.ProgressUpdate{
		StudentID:    studentID,
		LessonID:     lessonID,
		Percentage:   100,
		LastPosition: existing.LastPosition,
		Status:       domain.StatusCompleted,
	}, now)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
