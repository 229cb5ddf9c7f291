package repository

import (
	"context"
	"errors"

	"learnpath-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ========== USER REPOSITORY ==========

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepo{db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return &user, err
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return &user, err
}

func (r *userRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// ========== COURSE REPOSITORY ==========

type courseRepo struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) domain.CourseRepository {
	return &courseRepo{db}
}

func (r *courseRepo) Create(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) Update(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) GetAll(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) GetByID(ctx context.Context, id uint) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCourseNotFound
	}
	return &course, err
}

func (r *courseRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Count(&count).Error
	return count, err
}

// ========== TRACK REPOSITORY ==========

type trackRepo struct {
	db *gorm.DB
}

func NewTrackRepository(db *gorm.DB) domain.TrackRepository {
	return &trackRepo{db}
}

func (r *trackRepo) Create(ctx context.Context, track *domain.Track) error {
	return r.db.WithContext(ctx).Create(track).Error
}

func (r *trackRepo) GetAll(ctx context.Context) ([]domain.Track, error) {
	var tracks []domain.Track
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tracks).Error
	return tracks, err
}

func (r *trackRepo) GetByID(ctx context.Context, id uint) (*domain.Track, error) {
	var track domain.Track
	err := r.db.WithContext(ctx).First(&track, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTrackNotFound
	}
	return &track, err
}

func (r *trackRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Track{}).Count(&count).Error
	return count, err
}

// ========== ENROLLMENT REPOSITORY ==========

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) domain.EnrollmentRepository {
	return &enrollmentRepo{db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &enrollment, err
}

func (r *enrollmentRepo) GetByUserAndTrack(ctx context.Context, userID, trackID uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND track_id = ?", userID, trackID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &enrollment, err
}

func (r *enrollmentRepo) GetByUserID(ctx context.Context, userID uint) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) CountByCourseID(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}

// ========== LESSON PROGRESS REPOSITORY ==========

type lessonProgressRepo struct {
	db *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) domain.LessonProgressRepository {
	return &lessonProgressRepo{db}
}

func (r *lessonProgressRepo) GetByUser(ctx context.Context, userID uint) ([]domain.LessonProgress, error) {
	var progress []domain.LessonProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&progress).Error
	return progress, err
}

func (r *lessonProgressRepo) GetByUserAndLessons(ctx context.Context, userID uint, lessonIDs []string) ([]domain.LessonProgress, error) {
	var progress []domain.LessonProgress
	if len(lessonIDs) == 0 {
		return progress, nil
	}
	err := r.db.WithContext(ctx).Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&progress).Error
	return progress, err
}

func (r *lessonProgressRepo) GetByUserAndLesson(ctx context.Context, userID uint, lessonID string) (*domain.LessonProgress, error) {
	var progress domain.LessonProgress
	err := r.db.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &progress, err
}

// Save upserts on the (user_id, lesson_id) pair.
func (r *lessonProgressRepo) Save(ctx context.Context, progress *domain.LessonProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "percentage", "last_position", "completed_at", "updated_at"}),
	}).Create(progress).Error
}

// ========== LEVEL REQUEST REPOSITORY ==========

type levelRequestRepo struct {
	db *gorm.DB
}

func NewLevelRequestRepository(db *gorm.DB) domain.LevelRequestRepository {
	return &levelRequestRepo{db}
}

func (r *levelRequestRepo) Create(ctx context.Context, req *domain.LevelAdvancementRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrRequestPending
	}
	return err
}

func (r *levelRequestRepo) GetByID(ctx context.Context, id uint) (*domain.LevelAdvancementRequest, error) {
	var req domain.LevelAdvancementRequest
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	}
	return &req, err
}

func (r *levelRequestRepo) FindPending(ctx context.Context, userID uint, levelID string) (*domain.LevelAdvancementRequest, error) {
	var req domain.LevelAdvancementRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND level_id = ? AND status = ?", userID, levelID, domain.RequestPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &req, err
}

func (r *levelRequestRepo) List(ctx context.Context, filter domain.LevelRequestFilter) ([]domain.LevelAdvancementRequest, error) {
	var reqs []domain.LevelAdvancementRequest
	query := r.db.WithContext(ctx).Model(&domain.LevelAdvancementRequest{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.TrackID != nil {
		query = query.Where("track_id = ?", *filter.TrackID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *levelRequestRepo) Update(ctx context.Context, req *domain.LevelAdvancementRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *levelRequestRepo) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LevelAdvancementRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// ========== LEARNER STATS REPOSITORY ==========

type statsRepo struct {
	db *gorm.DB
}

func NewLearnerStatsRepository(db *gorm.DB) domain.LearnerStatsRepository {
	return &statsRepo{db}
}

// Get returns zeroed stats for learners that have none yet.
func (r *statsRepo) Get(ctx context.Context, userID uint) (*domain.LearnerStats, error) {
	var stats domain.LearnerStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.LearnerStats{UserID: userID}, nil
	}
	return &stats, err
}

func (r *statsRepo) Save(ctx context.Context, stats *domain.LearnerStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}

// ========== TRANSACTIONS ==========

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) domain.Transactor {
	return &transactor{db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, domain.TxRepositories{
			Enrollments:   NewEnrollmentRepository(tx),
			Progress:      NewLessonProgressRepository(tx),
			LevelRequests: NewLevelRequestRepository(tx),
			Stats:         NewLearnerStatsRepository(tx),
		})
	})
}
