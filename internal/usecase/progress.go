package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/progression"
)

type progressUsecase struct {
	progressRepo   domain.LessonProgressRepository
	enrollmentRepo domain.EnrollmentRepository
	tx             domain.Transactor
	structure      structureLoader
	now            func() time.Time
}

func NewProgressUsecase(
	pr domain.LessonProgressRepository,
	er domain.EnrollmentRepository,
	mr domain.ModuleRepository,
	lr domain.LevelRepository,
	cache domain.StructureCache,
	tx domain.Transactor,
) domain.ProgressUsecase {
	return &progressUsecase{
		progressRepo:   pr,
		enrollmentRepo: er,
		tx:             tx,
		structure:      structureLoader{moduleRepo: mr, levelRepo: lr, cache: cache},
		now:            time.Now,
	}
}

func (uc *progressUsecase) GetLearnerProgress(ctx context.Context, studentID uint) ([]domain.LessonProgress, error) {
	return uc.progressRepo.GetByUser(ctx, studentID)
}

func (uc *progressUsecase) GetEnrollments(ctx context.Context, studentID uint) ([]domain.Enrollment, error) {
	return uc.enrollmentRepo.GetByUserID(ctx, studentID)
}

// access is everything needed to judge and record one learner's work on one lesson.
type access struct {
	loc        *lessonLocation
	gate       progression.SequentialGate
	enrollment *domain.Enrollment
	courseIDs  []string // lesson ids of the whole course, empty for tracks
}

func (uc *progressUsecase) resolve(ctx context.Context, studentID uint, lessonID string) (*access, error) {
	loc, err := uc.structure.locate(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if loc.courseID != nil {
		enrollment, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, studentID, *loc.courseID)
		if err != nil {
			return nil, err
		}
		if enrollment == nil {
			return nil, domain.ErrNotEnrolled
		}
		modules, err := uc.structure.modules(ctx, *loc.courseID)
		if err != nil {
			return nil, err
		}
		ids := progression.LessonIDs(modules, nil)
		records, err := uc.progressRepo.GetByUserAndLessons(ctx, studentID, ids)
		if err != nil {
			return nil, err
		}
		return &access{
			loc:        loc,
			gate:       progression.NewLessonGate(modules, progression.NewProgressMap(records)),
			enrollment: enrollment,
			courseIDs:  ids,
		}, nil
	}

	enrollment, err := uc.enrollmentRepo.GetByUserAndTrack(ctx, studentID, *loc.trackID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, domain.ErrNotEnrolled
	}
	levels, err := uc.structure.levels(ctx, *loc.trackID)
	if err != nil {
		return nil, err
	}
	return &access{
		loc:        loc,
		gate:       progression.NewLevelGate(levels, enrollment),
		enrollment: enrollment,
	}, nil
}

func (uc *progressUsecase) CanAccessLesson(ctx context.Context, studentID uint, lessonID string) (*domain.Lesson, error) {
	a, err := uc.resolve(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}
	if !a.gate.LessonAccessible(lessonID) {
		return nil, domain.ErrLessonLocked
	}
	return a.loc.lesson, nil
}

func (uc *progressUsecase) UpdateProgress(ctx context.Context, update domain.ProgressUpdate) (*domain.LessonProgress, error) {
	if update.LessonID == "" || update.Percentage < 0 || update.Percentage > 100 || update.LastPosition < 0 {
		return nil, domain.ErrInvalidProgress
	}
	if update.Status != "" && !update.Status.Valid() {
		return nil, domain.ErrInvalidProgress
	}

	return uc.apply(ctx, update.StudentID, update.LessonID, func(existing domain.LessonProgress, now time.Time) (domain.LessonProgress, bool) {
		return progression.Merge(existing, update, now)
	})
}

func (uc *progressUsecase) MarkComplete(ctx context.Context, studentID uint, lessonID string) (*domain.LessonProgress, error) {
	return uc.apply(ctx, studentID, lessonID, func(existing domain.LessonProgress, now time.Time) (domain.LessonProgress, bool) {
		return progression.MarkComplete(existing, studentID, lessonID, now)
	})
}

type mergeFunc func(existing domain.LessonProgress, now time.Time) (domain.LessonProgress, bool)

// apply persists one progress change together with its side effects: XP and
// streak on first completion, and the course enrollment percentage.
func (uc *progressUsecase) apply(ctx context.Context, studentID uint, lessonID string, merge mergeFunc) (*domain.LessonProgress, error) {
	a, err := uc.resolve(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}
	if !a.gate.LessonAccessible(lessonID) {
		return nil, domain.ErrLessonLocked
	}

	now := uc.now()
	var stored domain.LessonProgress
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context, tx domain.TxRepositories) error {
		existing, err := tx.Progress.GetByUserAndLesson(ctx, studentID, lessonID)
		if err != nil {
			return err
		}
		base := domain.LessonProgress{}
		if existing != nil {
			base = *existing
		}

		merged, firstCompletion := merge(base, now)
		if err := tx.Progress.Save(ctx, &merged); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		stored = merged

		if firstCompletion {
			stats, err := tx.Stats.Get(ctx, studentID)
			if err != nil {
				return err
			}
			progression.RecordCompletion(stats, a.loc.lesson.RewardXP, now)
			if err := tx.Stats.Save(ctx, stats); err != nil {
				return fmt.Errorf("save stats: %w", err)
			}
		}

		if len(a.courseIDs) > 0 {
			return uc.refreshCourseProgress(ctx, tx, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("lesson progress stored",
		"student_id", studentID, "lesson_id", lessonID,
		"status", stored.Status, "percentage", stored.Percentage)
	return &stored, nil
}

func (uc *progressUsecase) refreshCourseProgress(ctx context.Context, tx domain.TxRepositories, a *access) error {
	records, err := tx.Progress.GetByUserAndLessons(ctx, a.enrollment.UserID, a.courseIDs)
	if err != nil {
		return err
	}
	completed := 0
	for _, r := range records {
		if r.Status == domain.StatusCompleted {
			completed++
		}
	}
	pct := progression.Percent(completed, len(a.courseIDs))
	finished := completed == len(a.courseIDs)
	if pct == a.enrollment.Progress && finished == a.enrollment.IsFinished {
		return nil
	}
	a.enrollment.Progress = pct
	a.enrollment.IsFinished = finished
	return tx.Enrollments.Update(ctx, a.enrollment)
}
