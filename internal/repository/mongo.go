package repository

import (
	"context"
	"errors"
	"time"

	"learnpath-backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	modulesCollection = "modules"
	levelsCollection  = "levels"
)

// EnsureIndexes creates the indexes backing order_index uniqueness and
// lesson lookups.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(modulesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "order_index", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lessons.id", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(levelsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "track_id", Value: 1}, {Key: "order_index", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lessons.id", Value: 1}}},
	})
	return err
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func sortByOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}})
}

func translateWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateOrder
	}
	return err
}

// ========== MODULE REPOSITORY ==========

type moduleRepo struct {
	db *mongo.Database
}

func NewModuleRepository(db *mongo.Database) domain.ModuleRepository {
	return &moduleRepo{db}
}

func (r *moduleRepo) Create(ctx context.Context, module *domain.Module) error {
	module.ID = newID()
	module.CreatedAt = time.Now()
	if module.Lessons == nil {
		module.Lessons = []domain.Lesson{}
	}
	for i := range module.Lessons {
		if module.Lessons[i].ID == "" {
			module.Lessons[i].ID = newID()
		}
	}
	_, err := r.db.Collection(modulesCollection).InsertOne(ctx, module)
	return translateWriteErr(err)
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	var module domain.Module
	err := r.db.Collection(modulesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&module)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) GetByCourseID(ctx context.Context, courseID uint) ([]domain.Module, error) {
	cursor, err := r.db.Collection(modulesCollection).Find(ctx, bson.M{"course_id": courseID}, sortByOrder())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	modules := []domain.Module{}
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// AddLesson appends a lesson unless its order_index is already taken in the module.
func (r *moduleRepo) AddLesson(ctx context.Context, moduleID string, lesson *domain.Lesson) error {
	lesson.ID = newID()
	res, err := r.db.Collection(modulesCollection).UpdateOne(ctx,
		bson.M{"_id": moduleID, "lessons.order_index": bson.M{"$ne": lesson.OrderIndex}},
		bson.M{"$push": bson.M{"lessons": lesson}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, moduleID); err != nil {
			return err
		}
		return domain.ErrDuplicateOrder
	}
	return nil
}

func (r *moduleRepo) SetLessonAsset(ctx context.Context, lessonID, fileID string) error {
	res, err := r.db.Collection(modulesCollection).UpdateOne(ctx,
		bson.M{"lessons.id": lessonID},
		bson.M{"$set": bson.M{"lessons.$.asset_file_id": fileID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *moduleRepo) FindLesson(ctx context.Context, lessonID string) (*domain.Module, *domain.Lesson, error) {
	var module domain.Module
	err := r.db.Collection(modulesCollection).FindOne(ctx, bson.M{"lessons.id": lessonID}).Decode(&module)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, domain.ErrLessonNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range module.Lessons {
		if module.Lessons[i].ID == lessonID {
			return &module, &module.Lessons[i], nil
		}
	}
	return nil, nil, domain.ErrLessonNotFound
}

// ========== LEVEL REPOSITORY ==========

type levelRepo struct {
	db *mongo.Database
}

func NewLevelRepository(db *mongo.Database) domain.LevelRepository {
	return &levelRepo{db}
}

func (r *levelRepo) Create(ctx context.Context, level *domain.Level) error {
	level.ID = newID()
	level.CreatedAt = time.Now()
	if level.Lessons == nil {
		level.Lessons = []domain.Lesson{}
	}
	for i := range level.Lessons {
		if level.Lessons[i].ID == "" {
			level.Lessons[i].ID = newID()
		}
	}
	_, err := r.db.Collection(levelsCollection).InsertOne(ctx, level)
	return translateWriteErr(err)
}

func (r *levelRepo) GetByID(ctx context.Context, id string) (*domain.Level, error) {
	var level domain.Level
	err := r.db.Collection(levelsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&level)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepo) GetByTrackID(ctx context.Context, trackID uint) ([]domain.Level, error) {
	cursor, err := r.db.Collection(levelsCollection).Find(ctx, bson.M{"track_id": trackID}, sortByOrder())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	levels := []domain.Level{}
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *levelRepo) AddLesson(ctx context.Context, levelID string, lesson *domain.Lesson) error {
	lesson.ID = newID()
	res, err := r.db.Collection(levelsCollection).UpdateOne(ctx,
		bson.M{"_id": levelID, "lessons.order_index": bson.M{"$ne": lesson.OrderIndex}},
		bson.M{"$push": bson.M{"lessons": lesson}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, levelID); err != nil {
			return err
		}
		return domain.ErrDuplicateOrder
	}
	return nil
}

func (r *levelRepo) SetLessonAsset(ctx context.Context, lessonID, fileID string) error {
	res, err := r.db.Collection(levelsCollection).UpdateOne(ctx,
		bson.M{"lessons.id": lessonID},
		bson.M{"$set": bson.M{"lessons.$.asset_file_id": fileID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *levelRepo) FindLesson(ctx context.Context, lessonID string) (*domain.Level, *domain.Lesson, error) {
	var level domain.Level
	err := r.db.Collection(levelsCollection).FindOne(ctx, bson.M{"lessons.id": lessonID}).Decode(&level)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, domain.ErrLessonNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range level.Lessons {
		if level.Lessons[i].ID == lessonID {
			return &level, &level.Lessons[i], nil
		}
	}
	return nil, nil, domain.ErrLessonNotFound
}
