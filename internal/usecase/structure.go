package usecase

import (
	"context"
	"errors"

	"learnpath-backend/internal/domain"
)

// structureLoader reads course and track structure through the cache.
type structureLoader struct {
	moduleRepo domain.ModuleRepository
	levelRepo  domain.LevelRepository
	cache      domain.StructureCache
}

func (s structureLoader) modules(ctx context.Context, courseID uint) ([]domain.Module, error) {
	if modules, ok := s.cache.GetModules(ctx, courseID); ok {
		return modules, nil
	}
	modules, err := s.moduleRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.cache.SetModules(ctx, courseID, modules)
	return modules, nil
}

func (s structureLoader) levels(ctx context.Context, trackID uint) ([]domain.Level, error) {
	if levels, ok := s.cache.GetLevels(ctx, trackID); ok {
		return levels, nil
	}
	levels, err := s.levelRepo.GetByTrackID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	s.cache.SetLevels(ctx, trackID, levels)
	return levels, nil
}

// lessonLocation is where a lesson lives: a course module or a track level.
type lessonLocation struct {
	lesson   *domain.Lesson
	courseID *uint
	trackID  *uint
}

func (s structureLoader) locate(ctx context.Context, lessonID string) (*lessonLocation, error) {
	module, lesson, err := s.moduleRepo.FindLesson(ctx, lessonID)
	if err == nil {
		return &lessonLocation{lesson: lesson, courseID: &module.CourseID}, nil
	}
	if !errors.Is(err, domain.ErrLessonNotFound) {
		return nil, err
	}

	level, lesson, err := s.levelRepo.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return &lessonLocation{lesson: lesson, trackID: &level.TrackID}, nil
}

func (s structureLoader) invalidate(ctx context.Context, loc *lessonLocation) {
	if loc.courseID != nil {
		s.cache.InvalidateCourse(ctx, *loc.courseID)
	}
	if loc.trackID != nil {
		s.cache.InvalidateTrack(ctx, *loc.trackID)
	}
}

func validateLesson(lesson *domain.Lesson) error {
	if lesson.Title == "" || !lesson.Type.Valid() || lesson.OrderIndex < 0 || lesson.RewardXP < 0 {
		return domain.ErrInvalidLesson
	}
	return nil
}
