package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/progression"
)

type levelUsecase struct {
	enrollmentRepo domain.EnrollmentRepository
	requestRepo    domain.LevelRequestRepository
	tx             domain.Transactor
	structure      structureLoader
	now            func() time.Time
}

func NewLevelUsecase(
	er domain.EnrollmentRepository,
	rr domain.LevelRequestRepository,
	lr domain.LevelRepository,
	cache domain.StructureCache,
	tx domain.Transactor,
) domain.LevelUsecase {
	return &levelUsecase{
		enrollmentRepo: er,
		requestRepo:    rr,
		tx:             tx,
		structure:      structureLoader{levelRepo: lr, cache: cache},
		now:            time.Now,
	}
}

// SubmitRequest asks for the learner's current level to be signed off. An
// already pending request for that level is returned as is and created is false.
func (uc *levelUsecase) SubmitRequest(ctx context.Context, studentID, trackID uint) (*domain.LevelAdvancementRequest, bool, error) {
	enrollment, err := uc.enrollmentRepo.GetByUserAndTrack(ctx, studentID, trackID)
	if err != nil {
		return nil, false, err
	}
	if enrollment == nil {
		return nil, false, domain.ErrNotEnrolled
	}
	if enrollment.IsFinished {
		return nil, false, domain.ErrTrackFinished
	}

	levels, err := uc.structure.levels(ctx, trackID)
	if err != nil {
		return nil, false, err
	}
	current, ok := progression.NewLevelGate(levels, enrollment).CurrentLevel(levels)
	if !ok {
		return nil, false, domain.ErrLevelNotFound
	}

	var (
		req     *domain.LevelAdvancementRequest
		created bool
	)
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context, tx domain.TxRepositories) error {
		pending, err := tx.LevelRequests.FindPending(ctx, studentID, current.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			req = pending
			return nil
		}

		records, err := tx.Progress.GetByUserAndLessons(ctx, studentID, progression.LessonIDs(nil, []domain.Level{current}))
		if err != nil {
			return err
		}
		if !progression.CanRequestNextLevel(current, progression.NewProgressMap(records)) {
			return domain.ErrLevelNotEligible
		}

		req = progression.NewRequest(studentID, trackID, current)
		if err := tx.LevelRequests.Create(ctx, req); err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, domain.ErrRequestPending) {
		// A concurrent submit won the insert; hand back its request.
		pending, ferr := uc.requestRepo.FindPending(ctx, studentID, current.ID)
		if ferr != nil {
			return nil, false, ferr
		}
		if pending == nil {
			return nil, false, err
		}
		return pending, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		slog.Info("level advancement requested", "student_id", studentID, "track_id", trackID, "level_id", current.ID)
	}
	return req, created, nil
}

func (uc *levelUsecase) ListRequests(ctx context.Context, filter domain.LevelRequestFilter) ([]domain.LevelAdvancementRequest, error) {
	return uc.requestRepo.List(ctx, filter)
}

// ApproveRequest resolves the request and moves the enrollment to the next
// level in one transaction.
func (uc *levelUsecase) ApproveRequest(ctx context.Context, requestID, adminID uint) (*domain.LevelAdvancementRequest, error) {
	var resolved *domain.LevelAdvancementRequest
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context, tx domain.TxRepositories) error {
		req, err := tx.LevelRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := progression.Resolve(req, domain.RequestApproved, adminID, "", uc.now()); err != nil {
			return err
		}

		enrollment, err := tx.Enrollments.GetByUserAndTrack(ctx, req.UserID, req.TrackID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return domain.ErrNotEnrolled
		}

		// The enrollment only moves when it still sits on the requested level.
		if enrollment.CurrentLevelID == req.LevelID {
			levels, err := uc.structure.levels(ctx, req.TrackID)
			if err != nil {
				return err
			}
			progression.Advance(enrollment, levels, req)
			if err := tx.Enrollments.Update(ctx, enrollment); err != nil {
				return err
			}
		}

		if err := tx.LevelRequests.Update(ctx, req); err != nil {
			return err
		}
		resolved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("level request approved", "request_id", requestID, "admin_id", adminID, "student_id", resolved.UserID)
	return resolved, nil
}

func (uc *levelUsecase) RejectRequest(ctx context.Context, requestID, adminID uint, reason string) (*domain.LevelAdvancementRequest, error) {
	var resolved *domain.LevelAdvancementRequest
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context, tx domain.TxRepositories) error {
		req, err := tx.LevelRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := progression.Resolve(req, domain.RequestRejected, adminID, reason, uc.now()); err != nil {
			return err
		}
		if err := tx.LevelRequests.Update(ctx, req); err != nil {
			return err
		}
		resolved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("level request rejected", "request_id", requestID, "admin_id", adminID)
	return resolved, nil
}
