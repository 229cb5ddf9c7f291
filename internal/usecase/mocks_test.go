package usecase

import (
	"context"
	"io"
	"mime/multipart"

	"learnpath-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockCourseRepo struct{ mock.Mock }

func (m *MockCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	return m.Called(ctx, course).Error(0)
}

func (m *MockCourseRepo) GetAll(ctx context.Context) ([]domain.Course, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Course), args.Error(1)
}

func (m *MockCourseRepo) GetByID(ctx context.Context, id uint) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepo) Update(ctx context.Context, course *domain.Course) error {
	return m.Called(ctx, course).Error(0)
}

func (m *MockCourseRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockTrackRepo struct{ mock.Mock }

func (m *MockTrackRepo) Create(ctx context.Context, track *domain.Track) error {
	return m.Called(ctx, track).Error(0)
}

func (m *MockTrackRepo) GetAll(ctx context.Context) ([]domain.Track, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Track), args.Error(1)
}

func (m *MockTrackRepo) GetByID(ctx context.Context, id uint) (*domain.Track, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Track), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrackRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockModuleRepo struct{ mock.Mock }

func (m *MockModuleRepo) Create(ctx context.Context, module *domain.Module) error {
	return m.Called(ctx, module).Error(0)
}

func (m *MockModuleRepo) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Module), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModuleRepo) GetByCourseID(ctx context.Context, courseID uint) ([]domain.Module, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]domain.Module), args.Error(1)
}

func (m *MockModuleRepo) AddLesson(ctx context.Context, moduleID string, lesson *domain.Lesson) error {
	return m.Called(ctx, moduleID, lesson).Error(0)
}

func (m *MockModuleRepo) SetLessonAsset(ctx context.Context, lessonID, fileID string) error {
	return m.Called(ctx, lessonID, fileID).Error(0)
}

func (m *MockModuleRepo) FindLesson(ctx context.Context, lessonID string) (*domain.Module, *domain.Lesson, error) {
	args := m.Called(ctx, lessonID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Module), args.Get(1).(*domain.Lesson), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

type MockLevelRepo struct{ mock.Mock }

func (m *MockLevelRepo) Create(ctx context.Context, level *domain.Level) error {
	return m.Called(ctx, level).Error(0)
}

func (m *MockLevelRepo) GetByID(ctx context.Context, id string) (*domain.Level, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Level), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLevelRepo) GetByTrackID(ctx context.Context, trackID uint) ([]domain.Level, error) {
	args := m.Called(ctx, trackID)
	return args.Get(0).([]domain.Level), args.Error(1)
}

func (m *MockLevelRepo) AddLesson(ctx context.Context, levelID string, lesson *domain.Lesson) error {
	return m.Called(ctx, levelID, lesson).Error(0)
}

func (m *MockLevelRepo) SetLessonAsset(ctx context.Context, lessonID, fileID string) error {
	return m.Called(ctx, lessonID, fileID).Error(0)
}

func (m *MockLevelRepo) FindLesson(ctx context.Context, lessonID string) (*domain.Level, *domain.Lesson, error) {
	args := m.Called(ctx, lessonID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Level), args.Get(1).(*domain.Lesson), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

type MockEnrollmentRepo struct{ mock.Mock }

func (m *MockEnrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	return m.Called(ctx, enrollment).Error(0)
}

func (m *MockEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEnrollmentRepo) GetByUserAndTrack(ctx context.Context, userID, trackID uint) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, trackID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEnrollmentRepo) GetByUserID(ctx context.Context, userID uint) ([]domain.Enrollment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) CountByCourseID(ctx context.Context, courseID uint) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepo) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	return m.Called(ctx, enrollment).Error(0)
}

type MockProgressRepo struct{ mock.Mock }

func (m *MockProgressRepo) GetByUser(ctx context.Context, userID uint) ([]domain.LessonProgress, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.LessonProgress), args.Error(1)
}

func (m *MockProgressRepo) GetByUserAndLessons(ctx context.Context, userID uint, lessonIDs []string) ([]domain.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonIDs)
	return args.Get(0).([]domain.LessonProgress), args.Error(1)
}

func (m *MockProgressRepo) GetByUserAndLesson(ctx context.Context, userID uint, lessonID string) (*domain.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if v := args.Get(0); v != nil {
		return v.(*domain.LessonProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepo) Save(ctx context.Context, progress *domain.LessonProgress) error {
	return m.Called(ctx, progress).Error(0)
}

type MockLevelRequestRepo struct{ mock.Mock }

func (m *MockLevelRequestRepo) Create(ctx context.Context, req *domain.LevelAdvancementRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockLevelRequestRepo) GetByID(ctx context.Context, id uint) (*domain.LevelAdvancementRequest, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.LevelAdvancementRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLevelRequestRepo) FindPending(ctx context.Context, userID uint, levelID string) (*domain.LevelAdvancementRequest, error) {
	args := m.Called(ctx, userID, levelID)
	if v := args.Get(0); v != nil {
		return v.(*domain.LevelAdvancementRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLevelRequestRepo) List(ctx context.Context, filter domain.LevelRequestFilter) ([]domain.LevelAdvancementRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.LevelAdvancementRequest), args.Error(1)
}

func (m *MockLevelRequestRepo) Update(ctx context.Context, req *domain.LevelAdvancementRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockLevelRequestRepo) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockStatsRepo struct{ mock.Mock }

func (m *MockStatsRepo) Get(ctx context.Context, userID uint) (*domain.LearnerStats, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*domain.LearnerStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepo) Save(ctx context.Context, stats *domain.LearnerStats) error {
	return m.Called(ctx, stats).Error(0)
}

type MockAssetRepo struct{ mock.Mock }

func (m *MockAssetRepo) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, lessonID string, uploadedBy uint) (*domain.FileInfo, error) {
	args := m.Called(ctx, file, header, lessonID, uploadedBy)
	if v := args.Get(0); v != nil {
		return v.(*domain.FileInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssetRepo) Download(ctx context.Context, fileID string) (io.ReadCloser, *domain.FileInfo, error) {
	args := m.Called(ctx, fileID)
	if v := args.Get(0); v != nil {
		return v.(io.ReadCloser), args.Get(1).(*domain.FileInfo), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

// passThroughTx runs fn directly against the given repositories.
type passThroughTx struct {
	repos domain.TxRepositories
}

func (t passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.TxRepositories) error) error {
	return fn(ctx, t.repos)
}

type nopCache struct{}

func (nopCache) GetModules(context.Context, uint) ([]domain.Module, bool) { return nil, false }
func (nopCache) SetModules(context.Context, uint, []domain.Module)       {}
func (nopCache) GetLevels(context.Context, uint) ([]domain.Level, bool)   { return nil, false }
func (nopCache) SetLevels(context.Context, uint, []domain.Level)         {}
func (nopCache) InvalidateCourse(context.Context, uint)                  {}
func (nopCache) InvalidateTrack(context.Context, uint)                   {}
