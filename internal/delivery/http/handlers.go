package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"learnpath-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

type Handler struct {
	AuthUsecase      domain.AuthUsecase
	CourseUsecase    domain.CourseUsecase
	TrackUsecase     domain.TrackUsecase
	ProgressUsecase  domain.ProgressUsecase
	LevelUsecase     domain.LevelUsecase
	DashboardUsecase domain.DashboardUsecase
}

func NewHandler(
	au domain.AuthUsecase,
	cu domain.CourseUsecase,
	tu domain.TrackUsecase,
	pu domain.ProgressUsecase,
	lu domain.LevelUsecase,
	du domain.DashboardUsecase,
) *Handler {
	return &Handler{
		AuthUsecase:      au,
		CourseUsecase:    cu,
		TrackUsecase:     tu,
		ProgressUsecase:  pu,
		LevelUsecase:     lu,
		DashboardUsecase: du,
	}
}

// ========== UTILITY FUNCTIONS ==========

func formatValidationErrors(err error) gin.H {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]string)
		for _, f := range ve {
			details[f.Field()] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", f.Field(), f.Tag())
		}
		return gin.H{"error": "Validation failed", "details": details}
	}
	return gin.H{"error": "Invalid request: " + err.Error()}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrTrackNotFound),
		errors.Is(err, domain.ErrLevelNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLessonLocked),
		errors.Is(err, domain.ErrNotEnrolled),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrRequestResolved),
		errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, domain.ErrTrackFinished):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLevelNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidLesson),
		errors.Is(err, domain.ErrFileTypeForbidden):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unknown errors are logged and
// hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "request_id", c.GetString(requestIDKey), "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func mustSession(c *gin.Context) (domain.Session, bool) {
	s, ok := sessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return s, ok
}

// studentFromQuery reads ?studentId=, defaulting to the caller. Learners may
// only name themselves.
func studentFromQuery(c *gin.Context, session domain.Session) (uint, bool) {
	raw := c.Query("studentId")
	if raw == "" {
		return session.UserID, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid studentId"})
		return 0, false
	}
	if !session.CanActFor(uint(id)) {
		respondError(c, domain.ErrForbidden)
		return 0, false
	}
	return uint(id), true
}

// ========== AUTH HANDLERS ==========

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	// Self-registration always creates learners.
	user := domain.User{Name: req.Name, Email: req.Email, Password: req.Password, Role: domain.RoleStudent}
	if err := h.AuthUsecase.Register(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var creds struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	token, err := h.AuthUsecase.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ========== COURSE HANDLERS ==========

func (h *Handler) GetCourses(c *gin.Context) {
	courses, err := h.CourseUsecase.GetAllCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) GetCourseDetail(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var userID *uint
	if s, ok := sessionFrom(c); ok {
		userID = &s.UserID
	}

	detail, err := h.CourseUsecase.GetCourseDetails(c.Request.Context(), courseID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetCoursePlayer(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tree, err := h.CourseUsecase.GetCoursePlayer(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *Handler) EnrollCourse(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.CourseUsecase.EnrollStudent(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// ========== TRACK HANDLERS ==========

func (h *Handler) GetTracks(c *gin.Context) {
	tracks, err := h.TrackUsecase.GetAllTracks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tracks)
}

func (h *Handler) GetTrackPlayer(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	trackID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tree, err := h.TrackUsecase.GetTrackPlayer(c.Request.Context(), session.UserID, trackID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *Handler) EnrollTrack(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	trackID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.TrackUsecase.EnrollStudent(c.Request.Context(), session.UserID, trackID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// ========== PROGRESS HANDLERS ==========

func (h *Handler) GetLessonProgress(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	studentID, ok := studentFromQuery(c, session)
	if !ok {
		return
	}

	progress, err := h.ProgressUsecase.GetLearnerProgress(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if progress == nil {
		progress = []domain.LessonProgress{}
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) SubmitProgress(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	var update domain.ProgressUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}
	if update.StudentID != session.UserID && session.Role != domain.RoleAdmin {
		respondError(c, domain.ErrForbidden)
		return
	}

	stored, err := h.ProgressUsecase.UpdateProgress(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) MarkLessonComplete(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	stored, err := h.ProgressUsecase.MarkComplete(c.Request.Context(), session.UserID, c.Param("lessonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) GetEnrollments(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	studentID, ok := studentFromQuery(c, session)
	if !ok {
		return
	}

	enrollments, err := h.ProgressUsecase.GetEnrollments(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if enrollments == nil {
		enrollments = []domain.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

// ========== LEVEL REQUEST HANDLERS ==========

func (h *Handler) ListLevelRequests(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	filter := domain.LevelRequestFilter{Status: domain.RequestStatus(c.Query("status"))}
	switch filter.Status {
	case "", domain.RequestPending, domain.RequestApproved, domain.RequestRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	// Staff without ?studentId= see everybody's requests.
	if c.Query("studentId") != "" || !session.IsStaff() {
		studentID, ok := studentFromQuery(c, session)
		if !ok {
			return
		}
		filter.UserID = &studentID
	}

	reqs, err := h.LevelUsecase.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []domain.LevelAdvancementRequest{}
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) SubmitLevelRequest(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	var body struct {
		TrackID uint `json:"track_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	req, created, err := h.LevelUsecase.SubmitRequest(c.Request.Context(), session.UserID, body.TrackID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, req)
}

func (h *Handler) ApproveLevelRequest(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	req, err := h.LevelUsecase.ApproveRequest(c.Request.Context(), requestID, session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) RejectLevelRequest(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, formatValidationErrors(err))
			return
		}
	}

	req, err := h.LevelUsecase.RejectRequest(c.Request.Context(), requestID, session.UserID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ========== AUTHORING HANDLERS ==========

func (h *Handler) CreateCourse(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	var req struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Metadata    json.RawMessage `json:"metadata"`
		IsPublished bool            `json:"is_published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	course := domain.Course{
		Title:        req.Title,
		Description:  req.Description,
		Metadata:     datatypes.JSON(req.Metadata),
		InstructorID: session.UserID,
		IsPublished:  req.IsPublished,
	}
	if err := h.CourseUsecase.CreateCourse(c.Request.Context(), &course); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) AddModule(c *gin.Context) {
	var req struct {
		CourseID   uint            `json:"course_id" binding:"required"`
		Title      string          `json:"title" binding:"required"`
		OrderIndex int             `json:"order_index" binding:"min=0"`
		Lessons    []domain.Lesson `json:"lessons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	module := domain.Module{CourseID: req.CourseID, Title: req.Title, OrderIndex: req.OrderIndex, Lessons: req.Lessons}
	if err := h.CourseUsecase.AddModule(c.Request.Context(), &module); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

func (h *Handler) AddModuleLesson(c *gin.Context) {
	var lesson domain.Lesson
	if err := c.ShouldBindJSON(&lesson); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	if err := h.CourseUsecase.AddLesson(c.Request.Context(), c.Param("id"), &lesson); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *Handler) CreateTrack(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	track := domain.Track{Title: req.Title, Description: req.Description, CreatedByID: session.UserID}
	if err := h.TrackUsecase.CreateTrack(c.Request.Context(), &track); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, track)
}

func (h *Handler) AddLevel(c *gin.Context) {
	var req struct {
		TrackID    uint            `json:"track_id" binding:"required"`
		Title      string          `json:"title" binding:"required"`
		OrderIndex int             `json:"order_index" binding:"min=0"`
		Lessons    []domain.Lesson `json:"lessons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	level := domain.Level{TrackID: req.TrackID, Title: req.Title, OrderIndex: req.OrderIndex, Lessons: req.Lessons}
	if err := h.TrackUsecase.AddLevel(c.Request.Context(), &level); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, level)
}

func (h *Handler) AddLevelLesson(c *gin.Context) {
	var lesson domain.Lesson
	if err := c.ShouldBindJSON(&lesson); err != nil {
		c.JSON(http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	if err := h.TrackUsecase.AddLesson(c.Request.Context(), c.Param("id"), &lesson); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// ========== DASHBOARD HANDLERS ==========

func (h *Handler) GetStudentDashboard(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	data, err := h.DashboardUsecase.GetStudentDashboard(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) GetAdminDashboard(c *gin.Context) {
	data, err := h.DashboardUsecase.GetAdminDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
