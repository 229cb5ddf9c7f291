package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"learnpath-backend/internal/domain"
)

func lesson(id string, order int, required bool) domain.Lesson {
	return domain.Lesson{ID: id, Title: id, Type: domain.LessonVideo, OrderIndex: order, Required: required, RewardXP: 10}
}

func completed(ids ...string) ProgressMap {
	m := ProgressMap{}
	for _, id := range ids {
		m[id] = domain.LessonProgress{LessonID: id, Status: domain.StatusCompleted, Percentage: 100}
	}
	return m
}

func sampleModules() []domain.Module {
	// stored out of order on purpose
	return []domain.Module{
		{ID: "m2", OrderIndex: 2, Lessons: []domain.Lesson{lesson("m2l1", 1, true)}},
		{ID: "m1", OrderIndex: 1, Lessons: []domain.Lesson{lesson("m1l2", 2, true), lesson("m1l1", 1, true)}},
	}
}

func TestLessonGate(t *testing.T) {
	tests := []struct {
		name     string
		progress ProgressMap
		want     map[string]bool
	}{
		{
			name:     "nothing completed",
			progress: ProgressMap{},
			want:     map[string]bool{"m1l1": true, "m1l2": false, "m2l1": false},
		},
		{
			name:     "first lesson completed",
			progress: completed("m1l1"),
			want:     map[string]bool{"m1l1": true, "m1l2": true, "m2l1": false},
		},
		{
			name:     "module boundary",
			progress: completed("m1l1", "m1l2"),
			want:     map[string]bool{"m1l1": true, "m1l2": true, "m2l1": true},
		},
		{
			name: "in progress predecessor keeps next locked",
			progress: ProgressMap{
				"m1l1": {LessonID: "m1l1", Status: domain.StatusInProgress, Percentage: 80},
			},
			want: map[string]bool{"m1l1": true, "m1l2": false, "m2l1": false},
		},
		{
			name:     "gap in completion",
			progress: completed("m1l2"),
			want:     map[string]bool{"m1l1": true, "m1l2": false, "m2l1": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewLessonGate(sampleModules(), tt.progress)
			for id, want := range tt.want {
				assert.Equal(t, want, gate.LessonAccessible(id), id)
			}
		})
	}
}

func TestLessonGate_SkipsEmptyModulesAndUnknownLessons(t *testing.T) {
	modules := []domain.Module{
		{ID: "empty", OrderIndex: 1},
		{ID: "m2", OrderIndex: 2, Lessons: []domain.Lesson{lesson("a", 1, true)}},
		{ID: "m3", OrderIndex: 3},
		{ID: "m4", OrderIndex: 4, Lessons: []domain.Lesson{lesson("b", 1, true)}},
	}

	gate := NewLessonGate(modules, completed("a"))
	assert.True(t, gate.LessonAccessible("a"))
	assert.True(t, gate.LessonAccessible("b"))
	assert.False(t, gate.LessonAccessible("missing"))
}

func sampleLevels() []domain.Level {
	return []domain.Level{
		{ID: "lv1", OrderIndex: 1, Lessons: []domain.Lesson{lesson("a", 1, true), lesson("b", 2, true)}},
		{ID: "lv2", OrderIndex: 2, Lessons: []domain.Lesson{lesson("c", 1, true)}},
		{ID: "lv3", OrderIndex: 3, Lessons: []domain.Lesson{lesson("d", 1, false)}},
	}
}

func TestLevelGate(t *testing.T) {
	enrollment := &domain.Enrollment{CurrentLevelID: "lv2", CurrentLevelOrder: 2}
	levels := sampleLevels()
	gate := NewLevelGate(levels, enrollment)

	assert.Equal(t, domain.LevelCompleted, gate.State(levels[0]))
	assert.Equal(t, domain.LevelCurrent, gate.State(levels[1]))
	assert.Equal(t, domain.LevelLocked, gate.State(levels[2]))

	assert.True(t, gate.LessonAccessible("a"), "completed level stays reviewable")
	assert.True(t, gate.LessonAccessible("c"))
	assert.False(t, gate.LessonAccessible("d"))
	assert.False(t, gate.LessonAccessible("unknown"))
}

func TestLevelGate_IgnoresLessonProgress(t *testing.T) {
	enrollment := &domain.Enrollment{CurrentLevelID: "lv1", CurrentLevelOrder: 1}
	gate := NewLevelGate(sampleLevels(), enrollment)

	// even with every lesson finished, level 2 opens only through approval
	assert.False(t, gate.LessonAccessible("c"))
}

func TestLevelGate_NotEnrolled(t *testing.T) {
	gate := NewLevelGate(sampleLevels(), nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.False(t, gate.LessonAccessible(id), id)
	}
	_, ok := gate.CurrentLevel(sampleLevels())
	assert.False(t, ok)
}

func TestGatesShareInterface(t *testing.T) {
	var gates []SequentialGate
	gates = append(gates, NewLessonGate(sampleModules(), ProgressMap{}))
	gates = append(gates, NewLevelGate(sampleLevels(), &domain.Enrollment{CurrentLevelID: "lv1", CurrentLevelOrder: 1}))
	assert.True(t, gates[0].LessonAccessible("m1l1"))
	assert.True(t, gates[1].LessonAccessible("a"))
}
