package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnpath-backend/config"
	httpDelivery "learnpath-backend/internal/delivery/http"
	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/repository"
	"learnpath-backend/internal/seed"
	"learnpath-backend/internal/usecase"
	"learnpath-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Connect to databases
	db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect databases", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Close(closeCtx)
	}()

	if err := config.AutoMigrate(db.PG); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureIndexes(ctx, db.Mongo); err != nil {
		slog.Error("mongo index setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.PG)
	courseRepo := repository.NewCourseRepository(db.PG)
	trackRepo := repository.NewTrackRepository(db.PG)
	enrollmentRepo := repository.NewEnrollmentRepository(db.PG)
	progressRepo := repository.NewLessonProgressRepository(db.PG)
	requestRepo := repository.NewLevelRequestRepository(db.PG)
	statsRepo := repository.NewLearnerStatsRepository(db.PG)
	tx := repository.NewTransactor(db.PG)
	moduleRepo := repository.NewModuleRepository(db.Mongo)
	levelRepo := repository.NewLevelRepository(db.Mongo)
	assetRepo, err := repository.NewAssetRepository(db.Mongo)
	if err != nil {
		slog.Error("gridfs setup failed", "error", err)
		os.Exit(1)
	}
	cache := repository.NewStructureCache(db.Redis, cfg.CacheTTL)

	// Initialize usecases
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens)
	courseUsecase := usecase.NewCourseUsecase(courseRepo, moduleRepo, enrollmentRepo, progressRepo, cache)
	trackUsecase := usecase.NewTrackUsecase(trackRepo, levelRepo, enrollmentRepo, progressRepo, requestRepo, cache)
	progressUsecase := usecase.NewProgressUsecase(progressRepo, enrollmentRepo, moduleRepo, levelRepo, cache, tx)
	levelUsecase := usecase.NewLevelUsecase(enrollmentRepo, requestRepo, levelRepo, cache, tx)
	assetUsecase := usecase.NewAssetUsecase(assetRepo, moduleRepo, levelRepo, cache, progressUsecase)
	dashboardUsecase := usecase.NewDashboardUsecase(userRepo, courseRepo, trackRepo, enrollmentRepo, requestRepo, statsRepo)

	// Seed demo users and the optional catalog
	authorID := seedUsers(ctx, authUsecase, userRepo)
	if cfg.SeedCatalog != "" {
		if err := seedCatalog(ctx, cfg.SeedCatalog, courseUsecase, trackUsecase, authorID); err != nil {
			slog.Error("catalog seeding failed", "path", cfg.SeedCatalog, "error", err)
		}
	}

	// Initialize handlers
	apiHandler := httpDelivery.NewHandler(authUsecase, courseUsecase, trackUsecase, progressUsecase, levelUsecase, dashboardUsecase)
	fileHandler := httpDelivery.NewFileHandler(assetUsecase)
	router := httpDelivery.InitRouter(apiHandler, fileHandler, tokens, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "cache", db.Redis != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// seedUsers creates one demo account per role and returns the instructor's id.
func seedUsers(ctx context.Context, auth domain.AuthUsecase, users domain.UserRepository) uint {
	demo := []domain.User{
		{Name: "Demo Student", Email: "student@learnpath.dev", Password: "password123", Role: domain.RoleStudent},
		{Name: "Demo Instructor", Email: "instructor@learnpath.dev", Password: "password123", Role: domain.RoleInstructor},
		{Name: "Demo Admin", Email: "admin@learnpath.dev", Password: "password123", Role: domain.RoleAdmin},
	}

	var authorID uint
	for i := range demo {
		u := demo[i]
		err := auth.Register(ctx, &u)
		if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
			slog.Warn("failed to seed user", "email", u.Email, "error", err)
			continue
		}
		if u.Role != domain.RoleInstructor {
			continue
		}
		if err == nil {
			authorID = u.ID
			continue
		}
		if existing, err := users.GetByEmail(ctx, u.Email); err == nil && existing != nil {
			authorID = existing.ID
		}
	}
	return authorID
}

func seedCatalog(ctx context.Context, path string, courses domain.CourseUsecase, tracks domain.TrackUsecase, authorID uint) error {
	if authorID == 0 {
		return errors.New("no instructor account to own the catalog")
	}
	cat, err := seed.Load(path)
	if err != nil {
		return err
	}
	_, err = seed.Apply(ctx, cat, courses, tracks, authorID)
	return err
}
