package usecase

import (
	"context"

	"learnpath-backend/internal/domain"
)

type dashboardUsecase struct {
	userRepo       domain.UserRepository
	courseRepo     domain.CourseRepository
	trackRepo      domain.TrackRepository
	enrollmentRepo domain.EnrollmentRepository
	requestRepo    domain.LevelRequestRepository
	statsRepo      domain.LearnerStatsRepository
}

func NewDashboardUsecase(
	ur domain.UserRepository,
	cr domain.CourseRepository,
	tr domain.TrackRepository,
	er domain.EnrollmentRepository,
	rr domain.LevelRequestRepository,
	sr domain.LearnerStatsRepository,
) domain.DashboardUsecase {
	return &dashboardUsecase{
		userRepo:       ur,
		courseRepo:     cr,
		trackRepo:      tr,
		enrollmentRepo: er,
		requestRepo:    rr,
		statsRepo:      sr,
	}
}

const recentRequestsLimit = 5

func (uc *dashboardUsecase) GetStudentDashboard(ctx context.Context, userID uint) (*domain.StudentDashboardData, error) {
	stats, err := uc.statsRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := uc.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &domain.StudentDashboardData{
		Stats:       *stats,
		Enrollments: make([]domain.EnrollmentWithCourse, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		if e.IsFinished {
			data.CompletedCount++
		} else {
			data.InProgressCount++
		}

		// A title that can't be resolved doesn't fail the dashboard.
		title := ""
		switch {
		case e.CourseID != nil:
			if c, err := uc.courseRepo.GetByID(ctx, *e.CourseID); err == nil {
				title = c.Title
			}
		case e.TrackID != nil:
			if t, err := uc.trackRepo.GetByID(ctx, *e.TrackID); err == nil {
				title = t.Title
			}
		}
		data.Enrollments = append(data.Enrollments, domain.EnrollmentWithCourse{Enrollment: e, Title: title})
	}

	data.PendingRequests, err = uc.requestRepo.List(ctx, domain.LevelRequestFilter{
		UserID: &userID,
		Status: domain.RequestPending,
	})
	if err != nil {
		return nil, err
	}
	data.RecentRequests, err = uc.requestRepo.List(ctx, domain.LevelRequestFilter{
		UserID: &userID,
		Limit:  recentRequestsLimit,
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (uc *dashboardUsecase) GetAdminDashboard(ctx context.Context) (*domain.AdminDashboardData, error) {
	students, err := uc.userRepo.CountByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	instructors, err := uc.userRepo.CountByRole(ctx, domain.RoleInstructor)
	if err != nil {
		return nil, err
	}
	courses, err := uc.courseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	tracks, err := uc.trackRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := uc.requestRepo.CountByStatus(ctx, domain.RequestPending)
	if err != nil {
		return nil, err
	}

	return &domain.AdminDashboardData{
		TotalStudents:    int(students),
		TotalInstructors: int(instructors),
		TotalCourses:     int(courses),
		TotalTracks:      int(tracks),
		PendingRequests:  int(pending),
	}, nil
}
