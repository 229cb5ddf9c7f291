package progression

import "learnpath-backend/internal/domain"

// SequentialGate decides whether a learner may open a lesson. Lock state is
// always derived from the inputs the gate was built with and never stored.
type SequentialGate interface {
	LessonAccessible(lessonID string) bool
}

// LessonGate is the course player rule: the first lesson of the first module
// is open, every other lesson opens once the lesson right before it (crossing
// module boundaries) is completed.
type LessonGate struct {
	predecessor map[string]string
	progress    ProgressMap
}

func NewLessonGate(modules []domain.Module, progress ProgressMap) *LessonGate {
	g := &LessonGate{
		predecessor: make(map[string]string),
		progress:    progress,
	}
	prev := ""
	for _, m := range SortModules(modules) {
		for _, l := range m.Lessons {
			g.predecessor[l.ID] = prev
			prev = l.ID
		}
	}
	return g
}

func (g *LessonGate) LessonAccessible(lessonID string) bool {
	prev, ok := g.predecessor[lessonID]
	if !ok {
		return false
	}
	if prev == "" {
		return true
	}
	return g.progress.Completed(prev)
}

// LevelGate is the track player rule: the enrollment's current level and
// every level ordered before it are open, nothing else is. Individual lesson
// progress plays no part.
type LevelGate struct {
	enrollment  *domain.Enrollment
	lessonLevel map[string]domain.Level
}

func NewLevelGate(levels []domain.Level, enrollment *domain.Enrollment) *LevelGate {
	g := &LevelGate{
		enrollment:  enrollment,
		lessonLevel: make(map[string]domain.Level),
	}
	for _, lv := range levels {
		for _, l := range lv.Lessons {
			g.lessonLevel[l.ID] = lv
		}
	}
	return g
}

func (g *LevelGate) State(level domain.Level) domain.LevelState {
	if g.enrollment == nil {
		return domain.LevelLocked
	}
	if level.ID != "" && level.ID == g.enrollment.CurrentLevelID {
		return domain.LevelCurrent
	}
	if level.OrderIndex < g.enrollment.CurrentLevelOrder {
		return domain.LevelCompleted
	}
	return domain.LevelLocked
}

func (g *LevelGate) LessonAccessible(lessonID string) bool {
	lv, ok := g.lessonLevel[lessonID]
	if !ok {
		return false
	}
	return g.State(lv) != domain.LevelLocked
}

// CurrentLevel returns the level the enrollment points at.
func (g *LevelGate) CurrentLevel(levels []domain.Level) (domain.Level, bool) {
	if g.enrollment == nil {
		return domain.Level{}, false
	}
	for _, lv := range levels {
		if lv.ID == g.enrollment.CurrentLevelID {
			return lv, true
		}
	}
	return domain.Level{}, false
}
