package usecase

import (
	"context"
	"log/slog"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/progression"
)

type trackUsecase struct {
	trackRepo      domain.TrackRepository
	levelRepo      domain.LevelRepository
	enrollmentRepo domain.EnrollmentRepository
	progressRepo   domain.LessonProgressRepository
	requestRepo    domain.LevelRequestRepository
	cache          domain.StructureCache
	structure      structureLoader
}

func NewTrackUsecase(
	tr domain.TrackRepository,
	lr domain.LevelRepository,
	er domain.EnrollmentRepository,
	pr domain.LessonProgressRepository,
	rr domain.LevelRequestRepository,
	cache domain.StructureCache,
) domain.TrackUsecase {
	return &trackUsecase{
		trackRepo:      tr,
		levelRepo:      lr,
		enrollmentRepo: er,
		progressRepo:   pr,
		requestRepo:    rr,
		cache:          cache,
		structure:      structureLoader{levelRepo: lr, cache: cache},
	}
}

func (uc *trackUsecase) CreateTrack(ctx context.Context, track *domain.Track) error {
	return uc.trackRepo.Create(ctx, track)
}

func (uc *trackUsecase) GetAllTracks(ctx context.Context) ([]domain.Track, error) {
	return uc.trackRepo.GetAll(ctx)
}

func (uc *trackUsecase) AddLevel(ctx context.Context, level *domain.Level) error {
	if _, err := uc.trackRepo.GetByID(ctx, level.TrackID); err != nil {
		return err
	}
	for i := range level.Lessons {
		if err := validateLesson(&level.Lessons[i]); err != nil {
			return err
		}
	}
	if hasDuplicateOrder(level.Lessons) {
		return domain.ErrDuplicateOrder
	}

	if err := uc.levelRepo.Create(ctx, level); err != nil {
		return err
	}
	uc.cache.InvalidateTrack(ctx, level.TrackID)
	return nil
}

func (uc *trackUsecase) AddLesson(ctx context.Context, levelID string, lesson *domain.Lesson) error {
	if err := validateLesson(lesson); err != nil {
		return err
	}
	level, err := uc.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		return err
	}
	if err := uc.levelRepo.AddLesson(ctx, levelID, lesson); err != nil {
		return err
	}
	uc.cache.InvalidateTrack(ctx, level.TrackID)
	return nil
}

// EnrollStudent starts the learner on the lowest ordered level.
func (uc *trackUsecase) EnrollStudent(ctx context.Context, userID, trackID uint) (*domain.Enrollment, error) {
	existing, err := uc.enrollmentRepo.GetByUserAndTrack(ctx, userID, trackID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyEnrolled
	}

	if _, err := uc.trackRepo.GetByID(ctx, trackID); err != nil {
		return nil, err
	}

	levels, err := uc.structure.levels(ctx, trackID)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:  userID,
		TrackID: &trackID,
	}
	if sorted := progression.SortLevels(levels); len(sorted) > 0 {
		enrollment.CurrentLevelID = sorted[0].ID
		enrollment.CurrentLevelOrder = sorted[0].OrderIndex
	}

	if err := uc.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	slog.Info("track enrollment created", "user_id", userID, "track_id", trackID, "level_id", enrollment.CurrentLevelID)
	return enrollment, nil
}

func (uc *trackUsecase) GetTrackPlayer(ctx context.Context, userID, trackID uint) (*domain.TrackTree, error) {
	track, err := uc.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}

	levels, err := uc.structure.levels(ctx, trackID)
	if err != nil {
		return nil, err
	}

	enrollment, err := uc.enrollmentRepo.GetByUserAndTrack(ctx, userID, trackID)
	if err != nil {
		return nil, err
	}

	records, err := uc.progressRepo.GetByUserAndLessons(ctx, userID, progression.LessonIDs(nil, levels))
	if err != nil {
		return nil, err
	}

	var pending *domain.LevelAdvancementRequest
	if enrollment != nil && enrollment.CurrentLevelID != "" {
		pending, err = uc.requestRepo.FindPending(ctx, userID, enrollment.CurrentLevelID)
		if err != nil {
			return nil, err
		}
	}

	tree := progression.BuildTrackTree(*track, levels, enrollment, progression.NewProgressMap(records), pending)
	return &tree, nil
}
