package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);default:'student'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Session is the authenticated identity of the caller, built from the token
// by the auth middleware and handed to whoever needs it.
type Session struct {
	UserID uint
	Role   Role
}

func (s Session) IsStaff() bool {
	return s.Role == RoleInstructor || s.Role == RoleAdmin
}

// CanActFor reports whether the session may read or write data owned by studentID.
func (s Session) CanActFor(studentID uint) bool {
	return s.UserID == studentID || s.Role == RoleAdmin || s.Role == RoleInstructor
}

type Course struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Metadata     datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	InstructorID uint           `json:"instructor_id" gorm:"not null"`
	IsPublished  bool           `json:"is_published" gorm:"default:false"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// Track is the level-gated counterpart of a course.
type Track struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Enrollment links a learner to either a course or a track.
type Enrollment struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	CourseID          *uint     `json:"course_id,omitempty" gorm:"index"`
	TrackID           *uint     `json:"track_id,omitempty" gorm:"index"`
	CurrentLevelID    string    `json:"current_level_id,omitempty"`
	CurrentLevelOrder int       `json:"current_level_order"`
	Progress          int       `json:"progress" gorm:"default:0"` // 0-100
	IsFinished        bool      `json:"is_finished" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type LessonProgress struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	LessonID     string         `json:"lesson_id" gorm:"not null;uniqueIndex:idx_user_lesson"` // MongoDB ObjectID hex
	Status       ProgressStatus `json:"status" gorm:"type:varchar(20);not null;default:'not_started'"`
	Percentage   int            `json:"progress_percentage" gorm:"not null;default:0"`
	LastPosition int            `json:"last_position" gorm:"not null;default:0"` // seconds
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// LevelAdvancementRequest is created by a learner and resolved by an admin.
// Once approved or rejected it is never modified again.
type LevelAdvancementRequest struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	UserID          uint          `json:"student_id" gorm:"not null;index:idx_request_owner"`
	TrackID         uint          `json:"track_id" gorm:"not null;index"`
	LevelID         string        `json:"level_id" gorm:"not null;index:idx_request_owner"`
	LevelOrder      int           `json:"level_order"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	RejectionReason string        `json:"rejection_reason,omitempty" gorm:"type:text"`
	ResolvedByID    *uint         `json:"resolved_by_id,omitempty"`
	ResolvedAt      *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// LearnerStats holds gamification counters.
type LearnerStats struct {
	UserID         uint       `json:"student_id" gorm:"primaryKey"`
	XP             int        `json:"xp" gorm:"not null;default:0"`
	StreakDays     int        `json:"streak_days" gorm:"not null;default:0"`
	LongestStreak  int        `json:"longest_streak" gorm:"not null;default:0"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty" gorm:"type:date"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// ========== MONGODB MODELS ==========

type LessonType string

const (
	LessonVideo   LessonType = "video"
	LessonArticle LessonType = "article"
	LessonCode    LessonType = "code"
)

func (t LessonType) Valid() bool {
	return t == LessonVideo || t == LessonArticle || t == LessonCode
}

// Lesson is embedded in its Module or Level document.
type Lesson struct {
	ID              string     `json:"id" bson:"id"`
	Title           string     `json:"title" bson:"title"`
	Type            LessonType `json:"type" bson:"type"`
	OrderIndex      int        `json:"order_index" bson:"order_index"`
	Required        bool       `json:"required" bson:"required"`
	RewardXP        int        `json:"reward_xp" bson:"reward_xp"`
	DurationSeconds int        `json:"duration_seconds,omitempty" bson:"duration_seconds,omitempty"`
	Body            string     `json:"body,omitempty" bson:"body,omitempty"`
	AssetFileID     string     `json:"asset_file_id,omitempty" bson:"asset_file_id,omitempty"` // GridFS File ID
}

type Module struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	CourseID   uint      `json:"course_id" bson:"course_id"`
	Title      string    `json:"title" bson:"title"`
	OrderIndex int       `json:"order_index" bson:"order_index"`
	Lessons    []Lesson  `json:"lessons" bson:"lessons"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type Level struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	TrackID    uint      `json:"track_id" bson:"track_id"`
	Title      string    `json:"title" bson:"title"`
	OrderIndex int       `json:"order_index" bson:"order_index"`
	Lessons    []Lesson  `json:"lessons" bson:"lessons"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// ========== RESPONSE DTOs ==========

type CourseDetail struct {
	Course
	Modules          []Module `json:"modules"`
	EnrolledStudents int      `json:"enrolled_students"`
	IsEnrolled       bool     `json:"is_enrolled"`
}

type LessonNode struct {
	Lesson
	Status       ProgressStatus `json:"status"`
	Percentage   int            `json:"progress_percentage"`
	LastPosition int            `json:"last_position"`
	Unlocked     bool           `json:"unlocked"`
}

type ModuleNode struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	OrderIndex       int          `json:"order_index"`
	Lessons          []LessonNode `json:"lessons"`
	CompletedLessons int          `json:"completed_lessons"`
	TotalLessons     int          `json:"total_lessons"`
	Percentage       int          `json:"progress_percentage"`
}

// CourseTree is the course player view for one learner.
type CourseTree struct {
	Course           Course       `json:"course"`
	Modules          []ModuleNode `json:"modules"`
	CompletedLessons int          `json:"completed_lessons"`
	TotalLessons     int          `json:"total_lessons"`
	Percentage       int          `json:"progress_percentage"`
	IsEnrolled       bool         `json:"is_enrolled"`
}

type LevelState string

const (
	LevelLocked    LevelState = "locked"
	LevelCurrent   LevelState = "current"
	LevelCompleted LevelState = "completed"
)

type LevelNode struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	OrderIndex        int          `json:"order_index"`
	State             LevelState   `json:"state"`
	Lessons           []LessonNode `json:"lessons"`
	CompletedLessons  int          `json:"completed_lessons"`
	TotalLessons      int          `json:"total_lessons"`
	RequiredCompleted int          `json:"required_completed"`
	RequiredTotal     int          `json:"required_total"`
	Percentage        int          `json:"progress_percentage"`
}

// TrackTree is the track player view for one learner.
type TrackTree struct {
	Track               Track                    `json:"track"`
	Enrollment          *Enrollment              `json:"enrollment,omitempty"`
	Levels              []LevelNode              `json:"levels"`
	CanRequestNextLevel bool                     `json:"can_request_next_level"`
	PendingRequest      *LevelAdvancementRequest `json:"pending_request,omitempty"`
}

type EnrollmentWithCourse struct {
	Enrollment
	Title string `json:"title"`
}

type StudentDashboardData struct {
	Stats           LearnerStats              `json:"stats"`
	Enrollments     []EnrollmentWithCourse    `json:"enrollments"`
	CompletedCount  int                       `json:"completed_courses"`
	InProgressCount int                       `json:"in_progress_courses"`
	PendingRequests []LevelAdvancementRequest `json:"pending_requests"`
	RecentRequests  []LevelAdvancementRequest `json:"recent_requests"`
}

type AdminDashboardData struct {
	TotalStudents    int `json:"total_students"`
	TotalInstructors int `json:"total_instructors"`
	TotalCourses     int `json:"total_courses"`
	TotalTracks      int `json:"total_tracks"`
	PendingRequests  int `json:"pending_requests"`
}
