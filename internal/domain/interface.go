package domain

import (
	"context"
	"io"
	"mime/multipart"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id uint) (*Course, error)
	Update(ctx context.Context, course *Course) error
	Count(ctx context.Context) (int64, error)
}

type TrackRepository interface {
	Create(ctx context.Context, track *Track) error
	GetAll(ctx context.Context) ([]Track, error)
	GetByID(ctx context.Context, id uint) (*Track, error)
	Count(ctx context.Context) (int64, error)
}

type ModuleRepository interface { // MongoDB
	Create(ctx context.Context, module *Module) error
	GetByID(ctx context.Context, id string) (*Module, error)
	GetByCourseID(ctx context.Context, courseID uint) ([]Module, error)
	AddLesson(ctx context.Context, moduleID string, lesson *Lesson) error
	SetLessonAsset(ctx context.Context, lessonID, fileID string) error
	FindLesson(ctx context.Context, lessonID string) (*Module, *Lesson, error)
}

type LevelRepository interface { // MongoDB
	Create(ctx context.Context, level *Level) error
	GetByID(ctx context.Context, id string) (*Level, error)
	GetByTrackID(ctx context.Context, trackID uint) ([]Level, error)
	AddLesson(ctx context.Context, levelID string, lesson *Lesson) error
	SetLessonAsset(ctx context.Context, lessonID, fileID string) error
	FindLesson(ctx context.Context, lessonID string) (*Level, *Lesson, error)
}

// StructureCache caches author-owned course/track structure. Learner
// progress and lock state are never cached.
type StructureCache interface {
	GetModules(ctx context.Context, courseID uint) ([]Module, bool)
	SetModules(ctx context.Context, courseID uint, modules []Module)
	GetLevels(ctx context.Context, trackID uint) ([]Level, bool)
	SetLevels(ctx context.Context, trackID uint, levels []Level)
	InvalidateCourse(ctx context.Context, courseID uint)
	InvalidateTrack(ctx context.Context, trackID uint)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*Enrollment, error)
	GetByUserAndTrack(ctx context.Context, userID, trackID uint) (*Enrollment, error)
	GetByUserID(ctx context.Context, userID uint) ([]Enrollment, error)
	CountByCourseID(ctx context.Context, courseID uint) (int64, error)
	Update(ctx context.Context, enrollment *Enrollment) error
}

type LessonProgressRepository interface {
	GetByUser(ctx context.Context, userID uint) ([]LessonProgress, error)
	GetByUserAndLessons(ctx context.Context, userID uint, lessonIDs []string) ([]LessonProgress, error)
	GetByUserAndLesson(ctx context.Context, userID uint, lessonID string) (*LessonProgress, error)
	Save(ctx context.Context, progress *LessonProgress) error
}

type LevelRequestRepository interface {
	Create(ctx context.Context, req *LevelAdvancementRequest) error
	GetByID(ctx context.Context, id uint) (*LevelAdvancementRequest, error)
	FindPending(ctx context.Context, userID uint, levelID string) (*LevelAdvancementRequest, error)
	List(ctx context.Context, filter LevelRequestFilter) ([]LevelAdvancementRequest, error)
	Update(ctx context.Context, req *LevelAdvancementRequest) error
	CountByStatus(ctx context.Context, status RequestStatus) (int64, error)
}

type LevelRequestFilter struct {
	UserID  *uint
	TrackID *uint
	Status  RequestStatus
	Limit   int
}

type LearnerStatsRepository interface {
	Get(ctx context.Context, userID uint) (*LearnerStats, error)
	Save(ctx context.Context, stats *LearnerStats) error
}

// Transactor runs fn with repositories bound to a single transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}

type TxRepositories struct {
	Enrollments   EnrollmentRepository
	Progress      LessonProgressRepository
	LevelRequests LevelRequestRepository
	Stats         LearnerStatsRepository
}

type FileInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type AssetRepository interface { // GridFS
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, lessonID string, uploadedBy uint) (*FileInfo, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, *FileInfo, error)
}

// ========== USECASES ==========

type AuthUsecase interface {
	Register(ctx context.Context, user *User) error
	Login(ctx context.Context, email, password string) (string, error)
}

type CourseUsecase interface {
	CreateCourse(ctx context.Context, course *Course) error
	GetAllCourses(ctx context.Context) ([]Course, error)
	GetCourseDetails(ctx context.Context, courseID uint, userID *uint) (*CourseDetail, error)
	AddModule(ctx context.Context, module *Module) error
	AddLesson(ctx context.Context, moduleID string, lesson *Lesson) error
	EnrollStudent(ctx context.Context, userID, courseID uint) (*Enrollment, error)
	GetCoursePlayer(ctx context.Context, userID, courseID uint) (*CourseTree, error)
}

type TrackUsecase interface {
	CreateTrack(ctx context.Context, track *Track) error
	GetAllTracks(ctx context.Context) ([]Track, error)
	AddLevel(ctx context.Context, level *Level) error
	AddLesson(ctx context.Context, levelID string, lesson *Lesson) error
	EnrollStudent(ctx context.Context, userID, trackID uint) (*Enrollment, error)
	GetTrackPlayer(ctx context.Context, userID, trackID uint) (*TrackTree, error)
}

type ProgressUpdate struct {
	StudentID    uint           `json:"student_id" binding:"required"`
	LessonID     string         `json:"lesson_id" binding:"required"`
	Percentage   int            `json:"progress_percentage" binding:"min=0,max=100"`
	LastPosition int            `json:"last_position" binding:"min=0"`
	Status       ProgressStatus `json:"status" binding:"omitempty,oneof=not_started in_progress completed"`
}

type ProgressUsecase interface {
	GetLearnerProgress(ctx context.Context, studentID uint) ([]LessonProgress, error)
	UpdateProgress(ctx context.Context, update ProgressUpdate) (*LessonProgress, error)
	MarkComplete(ctx context.Context, studentID uint, lessonID string) (*LessonProgress, error)
	GetEnrollments(ctx context.Context, studentID uint) ([]Enrollment, error)
	CanAccessLesson(ctx context.Context, studentID uint, lessonID string) (*Lesson, error)
}

type LevelUsecase interface {
	SubmitRequest(ctx context.Context, studentID, trackID uint) (*LevelAdvancementRequest, bool, error)
	ListRequests(ctx context.Context, filter LevelRequestFilter) ([]LevelAdvancementRequest, error)
	ApproveRequest(ctx context.Context, requestID, adminID uint) (*LevelAdvancementRequest, error)
	RejectRequest(ctx context.Context, requestID, adminID uint, reason string) (*LevelAdvancementRequest, error)
}

type AssetUsecase interface {
	UploadLessonAsset(ctx context.Context, lessonID string, file multipart.File, header *multipart.FileHeader, uploadedBy uint) (*FileInfo, error)
	OpenLessonAsset(ctx context.Context, session Session, lessonID string) (io.ReadCloser, *FileInfo, error)
}

type DashboardUsecase interface {
	GetStudentDashboard(ctx context.Context, userID uint) (*StudentDashboardData, error)
	GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error)
}
