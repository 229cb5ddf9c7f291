package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpath-backend/internal/domain"
)

func TestCanRequestNextLevel(t *testing.T) {
	level := domain.Level{ID: "lv1", OrderIndex: 1, Lessons: []domain.Lesson{
		lesson("a", 1, true), lesson("b", 2, true), lesson("c", 3, true), lesson("opt", 4, false),
	}}

	progress := completed("a", "b")
	done, total := RequiredCounts(level, progress)
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
	assert.False(t, CanRequestNextLevel(level, progress))

	progress["c"] = domain.LessonProgress{LessonID: "c", Status: domain.StatusCompleted}
	assert.True(t, CanRequestNextLevel(level, progress))
}

func TestCanRequestNextLevel_NoRequiredLessons(t *testing.T) {
	level := domain.Level{ID: "lv", Lessons: []domain.Lesson{lesson("opt", 1, false)}}
	assert.True(t, CanRequestNextLevel(level, ProgressMap{}))
	assert.True(t, CanRequestNextLevel(domain.Level{ID: "empty"}, ProgressMap{}))
}

func TestNextLevel(t *testing.T) {
	levels := []domain.Level{{ID: "c", OrderIndex: 5}, {ID: "a", OrderIndex: 1}, {ID: "b", OrderIndex: 3}}

	next, ok := NextLevel(levels, 1)
	require.True(t, ok)
	assert.Equal(t, "b", next.ID)

	_, ok = NextLevel(levels, 5)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	now := time.Now()

	req := NewRequest(1, 2, domain.Level{ID: "lv1", OrderIndex: 1})
	require.NoError(t, Resolve(req, domain.RequestRejected, 9, "watch lesson 3 again", now))
	assert.Equal(t, domain.RequestRejected, req.Status)
	assert.Equal(t, "watch lesson 3 again", req.RejectionReason)
	assert.Equal(t, uint(9), *req.ResolvedByID)

	err := Resolve(req, domain.RequestApproved, 9, "", now)
	assert.ErrorIs(t, err, domain.ErrRequestResolved)
	assert.Equal(t, domain.RequestRejected, req.Status)

	other := NewRequest(1, 2, domain.Level{ID: "lv1", OrderIndex: 1})
	assert.Error(t, Resolve(other, domain.RequestPending, 9, "", now))
	assert.Equal(t, domain.RequestPending, other.Status)
}

func TestAdvance(t *testing.T) {
	levels := sampleLevels()
	enrollment := &domain.Enrollment{CurrentLevelID: "lv1", CurrentLevelOrder: 1}

	Advance(enrollment, levels, &domain.LevelAdvancementRequest{LevelID: "lv1", LevelOrder: 1})
	assert.Equal(t, "lv2", enrollment.CurrentLevelID)
	assert.Equal(t, 2, enrollment.CurrentLevelOrder)
	assert.Equal(t, 33, enrollment.Progress)
	assert.False(t, enrollment.IsFinished)

	Advance(enrollment, levels, &domain.LevelAdvancementRequest{LevelID: "lv3", LevelOrder: 3})
	assert.True(t, enrollment.IsFinished)
	assert.Empty(t, enrollment.CurrentLevelID)
	assert.Equal(t, 100, enrollment.Progress)

	gate := NewLevelGate(levels, enrollment)
	for _, lv := range levels {
		assert.Equal(t, domain.LevelCompleted, gate.State(lv))
	}
}
