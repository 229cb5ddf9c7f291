package http

import (
	"net/http"
	"time"

	"learnpath-backend/internal/domain"
	"learnpath-backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRouter(handler *Handler, files *FileHandler, tokens *utils.TokenManager, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	if len(origins) > 0 {
		r.Use(cors.New(corsConfig(origins)))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Routes
	api := r.Group("/api/v1")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)
	}

	// Protected Routes (Student, Instructor, Admin)
	protected := api.Group("/")
	protected.Use(AuthMiddleware(tokens))
	{
		protected.GET("/courses", handler.GetCourses)
		protected.GET("/courses/:id", handler.GetCourseDetail)
		protected.GET("/courses/:id/player", handler.GetCoursePlayer)
		protected.POST("/courses/:id/enroll", handler.EnrollCourse)

		protected.GET("/tracks", handler.GetTracks)
		protected.GET("/tracks/:id/player", handler.GetTrackPlayer)
		protected.POST("/tracks/:id/enroll", handler.EnrollTrack)

		protected.GET("/lesson-progress", handler.GetLessonProgress)
		protected.POST("/lesson-progress", handler.SubmitProgress)
		protected.POST("/lesson-progress/:lessonId/complete", handler.MarkLessonComplete)
		protected.GET("/enrollments", handler.GetEnrollments)

		protected.GET("/level-requests", handler.ListLevelRequests)
		protected.POST("/level-requests", handler.SubmitLevelRequest)

		protected.GET("/lessons/:id/asset", files.StreamLessonAsset)
		protected.GET("/dashboard/student", handler.GetStudentDashboard)
	}

	// Instructor & Admin Only
	instructor := api.Group("/instructor")
	instructor.Use(AuthMiddleware(tokens, domain.RoleInstructor, domain.RoleAdmin))
	{
		instructor.POST("/courses", handler.CreateCourse)
		instructor.POST("/modules", handler.AddModule)
		instructor.POST("/modules/:id/lessons", handler.AddModuleLesson)
		instructor.POST("/tracks", handler.CreateTrack)
		instructor.POST("/levels", handler.AddLevel)
		instructor.POST("/levels/:id/lessons", handler.AddLevelLesson)
		instructor.POST("/lessons/:id/asset", files.UploadLessonAsset)
	}

	// Admin Only
	admin := api.Group("/admin")
	admin.Use(AuthMiddleware(tokens, domain.RoleAdmin))
	{
		admin.GET("/dashboard", handler.GetAdminDashboard)
		admin.PATCH("/level-requests/:id/approve", handler.ApproveLevelRequest)
		admin.PATCH("/level-requests/:id/reject", handler.RejectLevelRequest)
	}

	return r
}

// corsConfig lets browser players call the API. "*" allows any origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
