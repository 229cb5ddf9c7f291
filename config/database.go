package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"learnpath-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	PG    *gorm.DB
	Mongo *mongo.Database
	Redis *redis.Client // nil when REDIS_URL is empty
}

func ConnectDB(ctx context.Context, cfg *Config) (*Database, error) {
	// 1. PostgreSQL
	pgDB, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// 2. MongoDB
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(mctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(mctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := &Database{
		PG:    pgDB,
		Mongo: mongoClient.Database(cfg.MongoDBName),
	}

	// 3. Redis (optional)
	if cfg.RedisURL != "" {
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		db.Redis = client
	}

	slog.Info("databases connected", "mongo_db", cfg.MongoDBName, "redis", db.Redis != nil)
	return db, nil
}

func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (d *Database) Close(ctx context.Context) {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.Mongo != nil {
		_ = d.Mongo.Client().Disconnect(ctx)
	}
	if sqlDB, err := d.PG.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Course{},
		&domain.Track{},
		&domain.Enrollment{},
		&domain.LessonProgress{},
		&domain.LevelAdvancementRequest{},
		&domain.LearnerStats{},
	)
	if err != nil {
		return err
	}
	// At most one pending request per learner and level.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_request_pending
		ON level_advancement_requests (user_id, level_id) WHERE status = 'pending'`).Error
	if err != nil {
		return fmt.Errorf("pending request index: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}
