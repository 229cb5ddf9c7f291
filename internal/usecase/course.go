package usecase

import (
	"context"
	"log/slog"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/progression"
)

type courseUsecase struct {
	courseRepo     domain.CourseRepository
	enrollmentRepo domain.EnrollmentRepository
	progressRepo   domain.LessonProgressRepository
	moduleRepo     domain.ModuleRepository
	cache          domain.StructureCache
	structure      structureLoader
}

func NewCourseUsecase(
	cr domain.CourseRepository,
	mr domain.ModuleRepository,
	er domain.EnrollmentRepository,
	pr domain.LessonProgressRepository,
	cache domain.StructureCache,
) domain.CourseUsecase {
	return &courseUsecase{
		courseRepo:     cr,
		enrollmentRepo: er,
		progressRepo:   pr,
		moduleRepo:     mr,
		cache:          cache,
		structure:      structureLoader{moduleRepo: mr, cache: cache},
	}
}

// ========== COURSE CRUD ==========

func (uc *courseUsecase) CreateCourse(ctx context.Context, course *domain.Course) error {
	return uc.courseRepo.Create(ctx, course)
}

func (uc *courseUsecase) GetAllCourses(ctx context.Context) ([]domain.Course, error) {
	return uc.courseRepo.GetAll(ctx)
}

func (uc *courseUsecase) GetCourseDetails(ctx context.Context, courseID uint, userID *uint) (*domain.CourseDetail, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := uc.structure.modules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolledCount, err := uc.enrollmentRepo.CountByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	isEnrolled := false
	if userID != nil {
		enrollment, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, *userID, courseID)
		if err != nil {
			return nil, err
		}
		isEnrolled = enrollment != nil
	}

	return &domain.CourseDetail{
		Course:           *course,
		Modules:          progression.SortModules(modules),
		EnrolledStudents: int(enrolledCount),
		IsEnrolled:       isEnrolled,
	}, nil
}

// ========== MODULES & LESSONS ==========

func (uc *courseUsecase) AddModule(ctx context.Context, module *domain.Module) error {
	if _, err := uc.courseRepo.GetByID(ctx, module.CourseID); err != nil {
		return err
	}
	for i := range module.Lessons {
		if err := validateLesson(&module.Lessons[i]); err != nil {
			return err
		}
	}
	if hasDuplicateOrder(module.Lessons) {
		return domain.ErrDuplicateOrder
	}

	if err := uc.moduleRepo.Create(ctx, module); err != nil {
		return err
	}
	uc.cache.InvalidateCourse(ctx, module.CourseID)
	return nil
}

func (uc *courseUsecase) AddLesson(ctx context.Context, moduleID string, lesson *domain.Lesson) error {
	if err := validateLesson(lesson); err != nil {
		return err
	}
	module, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return err
	}
	if err := uc.moduleRepo.AddLesson(ctx, moduleID, lesson); err != nil {
		return err
	}
	uc.cache.InvalidateCourse(ctx, module.CourseID)
	return nil
}

// ========== ENROLLMENT ==========

func (uc *courseUsecase) EnrollStudent(ctx context.Context, userID, courseID uint) (*domain.Enrollment, error) {
	existing, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyEnrolled
	}

	if _, err := uc.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:   userID,
		CourseID: &courseID,
	}
	if err := uc.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	slog.Info("course enrollment created", "user_id", userID, "course_id", courseID)
	return enrollment, nil
}

// ========== PLAYER ==========

func (uc *courseUsecase) GetCoursePlayer(ctx context.Context, userID, courseID uint) (*domain.CourseTree, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := uc.structure.modules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := uc.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	records, err := uc.progressRepo.GetByUserAndLessons(ctx, userID, progression.LessonIDs(modules, nil))
	if err != nil {
		return nil, err
	}

	tree := progression.BuildCourseTree(*course, modules, progression.NewProgressMap(records))
	tree.IsEnrolled = enrollment != nil
	return &tree, nil
}

func hasDuplicateOrder(lessons []domain.Lesson) bool {
	seen := make(map[int]bool, len(lessons))
	for _, l := range lessons {
		if seen[l.OrderIndex] {
			return true
		}
		seen[l.OrderIndex] = true
	}
	return false
}
