package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
	ErrTrackNotFound  = errors.New("track not found")
	ErrLevelNotFound  = errors.New("level not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrDuplicateOrder = errors.New("order_index already used")
	ErrInvalidLesson  = errors.New("lesson needs a title, a valid type and non-negative order and xp")

	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrLessonLocked    = errors.New("lesson is locked")
	ErrInvalidProgress = errors.New("invalid progress update")

	ErrLevelNotEligible  = errors.New("required lessons of the current level are not completed")
	ErrRequestNotFound   = errors.New("level request not found")
	ErrRequestResolved   = errors.New("level request already resolved")
	ErrRequestPending    = errors.New("level request already pending")
	ErrTrackFinished     = errors.New("track already finished")
	ErrForbidden         = errors.New("forbidden")
	ErrFileNotFound      = errors.New("file not found")
	ErrFileTypeForbidden = errors.New("file type not allowed")
)
