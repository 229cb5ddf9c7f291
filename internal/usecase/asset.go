package usecase

import (
	"context"
	"io"
	"mime/multipart"

	"learnpath-backend/internal/domain"
)

type assetUsecase struct {
	assetRepo  domain.AssetRepository
	moduleRepo domain.ModuleRepository
	levelRepo  domain.LevelRepository
	progress   domain.ProgressUsecase
	structure  structureLoader
}

func NewAssetUsecase(
	ar domain.AssetRepository,
	mr domain.ModuleRepository,
	lr domain.LevelRepository,
	cache domain.StructureCache,
	progress domain.ProgressUsecase,
) domain.AssetUsecase {
	return &assetUsecase{
		assetRepo:  ar,
		moduleRepo: mr,
		levelRepo:  lr,
		progress:   progress,
		structure:  structureLoader{moduleRepo: mr, levelRepo: lr, cache: cache},
	}
}

func (uc *assetUsecase) UploadLessonAsset(ctx context.Context, lessonID string, file multipart.File, header *multipart.FileHeader, uploadedBy uint) (*domain.FileInfo, error) {
	loc, err := uc.structure.locate(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	info, err := uc.assetRepo.Upload(ctx, file, header, lessonID, uploadedBy)
	if err != nil {
		return nil, err
	}

	if loc.courseID != nil {
		err = uc.moduleRepo.SetLessonAsset(ctx, lessonID, info.ID)
	} else {
		err = uc.levelRepo.SetLessonAsset(ctx, lessonID, info.ID)
	}
	if err != nil {
		return nil, err
	}
	uc.structure.invalidate(ctx, loc)
	return info, nil
}

// OpenLessonAsset streams a lesson's asset. Learners only get assets of
// lessons they have unlocked; staff get everything.
func (uc *assetUsecase) OpenLessonAsset(ctx context.Context, session domain.Session, lessonID string) (io.ReadCloser, *domain.FileInfo, error) {
	var lesson *domain.Lesson
	if session.IsStaff() {
		loc, err := uc.structure.locate(ctx, lessonID)
		if err != nil {
			return nil, nil, err
		}
		lesson = loc.lesson
	} else {
		l, err := uc.progress.CanAccessLesson(ctx, session.UserID, lessonID)
		if err != nil {
			return nil, nil, err
		}
		lesson = l
	}

	if lesson.AssetFileID == "" {
		return nil, nil, domain.ErrFileNotFound
	}
	return uc.assetRepo.Download(ctx, lesson.AssetFileID)
}
