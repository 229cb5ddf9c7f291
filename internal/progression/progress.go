// Package progression holds the learner progression rules: lesson and level
// gating, completion percentages, playback normalisation and the level
// advancement state machine. Everything here is pure; callers load the data
// and persist the results.
package progression

import (
	"math"
	"sort"

	"learnpath-backend/internal/domain"
)

// ProgressMap indexes a learner's progress records by lesson ID.
type ProgressMap map[string]domain.LessonProgress

func NewProgressMap(records []domain.LessonProgress) ProgressMap {
	m := make(ProgressMap, len(records))
	for _, r := range records {
		m[r.LessonID] = r
	}
	return m
}

// Get returns the record for lessonID, or a not_started record when none exists.
func (m ProgressMap) Get(lessonID string) domain.LessonProgress {
	if p, ok := m[lessonID]; ok {
		if p.Status == "" {
			p.Status = domain.StatusNotStarted
		}
		return p
	}
	return domain.LessonProgress{LessonID: lessonID, Status: domain.StatusNotStarted}
}

func (m ProgressMap) Status(lessonID string) domain.ProgressStatus {
	return m.Get(lessonID).Status
}

func (m ProgressMap) Completed(lessonID string) bool {
	return m.Status(lessonID) == domain.StatusCompleted
}

// Percent is round(100 * completed / total), or 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// SortModules returns a copy ordered by order_index, with each module's
// lessons ordered too.
func SortModules(modules []domain.Module) []domain.Module {
	out := make([]domain.Module, len(modules))
	copy(out, modules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	for i := range out {
		out[i].Lessons = SortLessons(out[i].Lessons)
	}
	return out
}

func SortLevels(levels []domain.Level) []domain.Level {
	out := make([]domain.Level, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	for i := range out {
		out[i].Lessons = SortLessons(out[i].Lessons)
	}
	return out
}

func SortLessons(lessons []domain.Lesson) []domain.Lesson {
	out := make([]domain.Lesson, len(lessons))
	copy(out, lessons)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// LessonIDs lists every lesson ID in the given modules and levels.
func LessonIDs(modules []domain.Module, levels []domain.Level) []string {
	var ids []string
	for _, m := range modules {
		for _, l := range m.Lessons {
			ids = append(ids, l.ID)
		}
	}
	for _, lv := range levels {
		for _, l := range lv.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
