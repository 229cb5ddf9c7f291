package progression

import (
	"fmt"
	"time"

	"learnpath-backend/internal/domain"
)

// RequiredCounts counts the required lessons of a level and how many of them
// the learner completed.
func RequiredCounts(level domain.Level, progress ProgressMap) (completed, total int) {
	for _, l := range level.Lessons {
		if !l.Required {
			continue
		}
		total++
		if progress.Completed(l.ID) {
			completed++
		}
	}
	return completed, total
}

// CanRequestNextLevel is true once every required lesson of the level is
// completed. A level without required lessons is always eligible.
func CanRequestNextLevel(level domain.Level, progress ProgressMap) bool {
	completed, total := RequiredCounts(level, progress)
	return completed >= total
}

// NextLevel returns the level with the smallest order_index greater than order.
func NextLevel(levels []domain.Level, order int) (domain.Level, bool) {
	var next domain.Level
	found := false
	for _, lv := range levels {
		if lv.OrderIndex <= order {
			continue
		}
		if !found || lv.OrderIndex < next.OrderIndex {
			next = lv
			found = true
		}
	}
	return next, found
}

// NewRequest builds a pending request for the learner's current level.
func NewRequest(studentID, trackID uint, level domain.Level) *domain.LevelAdvancementRequest {
	return &domain.LevelAdvancementRequest{
		UserID:     studentID,
		TrackID:    trackID,
		LevelID:    level.ID,
		LevelOrder: level.OrderIndex,
		Status:     domain.RequestPending,
	}
}

// Resolve moves a pending request to approved or rejected. Resolved requests
// are terminal.
func Resolve(req *domain.LevelAdvancementRequest, decision domain.RequestStatus, adminID uint, reason string, now time.Time) error {
	if req.Status != domain.RequestPending {
		return domain.ErrRequestResolved
	}
	switch decision {
	case domain.RequestApproved:
		req.RejectionReason = ""
	case domain.RequestRejected:
		req.RejectionReason = reason
	default:
		return fmt.Errorf("invalid decision %q", decision)
	}
	req.Status = decision
	req.ResolvedByID = &adminID
	req.ResolvedAt = &now
	return nil
}

// Advance moves the enrollment past the approved request's level. Past the
// last level the enrollment is finished and no level is current.
func Advance(enrollment *domain.Enrollment, levels []domain.Level, req *domain.LevelAdvancementRequest) {
	next, ok := NextLevel(levels, req.LevelOrder)
	if !ok {
		enrollment.CurrentLevelID = ""
		enrollment.CurrentLevelOrder = req.LevelOrder + 1
		enrollment.IsFinished = true
		enrollment.Progress = 100
		return
	}
	enrollment.CurrentLevelID = next.ID
	enrollment.CurrentLevelOrder = next.OrderIndex
	enrollment.Progress = levelTrackPercent(levels, next.OrderIndex)
}

func levelTrackPercent(levels []domain.Level, currentOrder int) int {
	done := 0
	for _, lv := range levels {
		if lv.OrderIndex < currentOrder {
			done++
		}
	}
	return Percent(done, len(levels))
}
