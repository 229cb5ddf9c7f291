package progression

import "learnpath-backend/internal/domain"

// BuildCourseTree joins course structure with the learner's progress.
func BuildCourseTree(course domain.Course, modules []domain.Module, progress ProgressMap) domain.CourseTree {
	sorted := SortModules(modules)
	gate := NewLessonGate(sorted, progress)

	tree := domain.CourseTree{
		Course:  course,
		Modules: make([]domain.ModuleNode, 0, len(sorted)),
	}
	for _, m := range sorted {
		node := domain.ModuleNode{
			ID:         m.ID,
			Title:      m.Title,
			OrderIndex: m.OrderIndex,
			Lessons:    make([]domain.LessonNode, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			ln := lessonNode(l, progress, gate.LessonAccessible(l.ID))
			if ln.Status == domain.StatusCompleted {
				node.CompletedLessons++
			}
			node.Lessons = append(node.Lessons, ln)
		}
		node.TotalLessons = len(m.Lessons)
		node.Percentage = Percent(node.CompletedLessons, node.TotalLessons)

		tree.CompletedLessons += node.CompletedLessons
		tree.TotalLessons += node.TotalLessons
		tree.Modules = append(tree.Modules, node)
	}
	tree.Percentage = Percent(tree.CompletedLessons, tree.TotalLessons)
	return tree
}

// BuildTrackTree joins track structure with the learner's enrollment and progress.
func BuildTrackTree(
	track domain.Track,
	levels []domain.Level,
	enrollment *domain.Enrollment,
	progress ProgressMap,
	pending *domain.LevelAdvancementRequest,
) domain.TrackTree {
	sorted := SortLevels(levels)
	gate := NewLevelGate(sorted, enrollment)

	tree := domain.TrackTree{
		Track:          track,
		Enrollment:     enrollment,
		Levels:         make([]domain.LevelNode, 0, len(sorted)),
		PendingRequest: pending,
	}
	for _, lv := range sorted {
		state := gate.State(lv)
		node := domain.LevelNode{
			ID:         lv.ID,
			Title:      lv.Title,
			OrderIndex: lv.OrderIndex,
			State:      state,
			Lessons:    make([]domain.LessonNode, 0, len(lv.Lessons)),
		}
		for _, l := range lv.Lessons {
			ln := lessonNode(l, progress, state != domain.LevelLocked)
			if ln.Status == domain.StatusCompleted {
				node.CompletedLessons++
			}
			node.Lessons = append(node.Lessons, ln)
		}
		node.TotalLessons = len(lv.Lessons)
		node.Percentage = Percent(node.CompletedLessons, node.TotalLessons)
		node.RequiredCompleted, node.RequiredTotal = RequiredCounts(lv, progress)
		tree.Levels = append(tree.Levels, node)
	}

	if current, ok := gate.CurrentLevel(sorted); ok && !enrollment.IsFinished {
		tree.CanRequestNextLevel = CanRequestNextLevel(current, progress)
	}
	return tree
}

func lessonNode(l domain.Lesson, progress ProgressMap, unlocked bool) domain.LessonNode {
	p := progress.Get(l.ID)
	return domain.LessonNode{
		Lesson:       l,
		Status:       p.Status,
		Percentage:   p.Percentage,
		LastPosition: p.LastPosition,
		Unlocked:     unlocked,
	}
}
