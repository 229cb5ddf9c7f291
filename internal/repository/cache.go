package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"learnpath-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisStructureCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStructureCache returns a Redis backed cache, or a no-op cache when
// client is nil.
func NewStructureCache(client *redis.Client, ttl time.Duration) domain.StructureCache {
	if client == nil {
		return NopStructureCache{}
	}
	return &redisStructureCache{client: client, ttl: ttl}
}

func courseKey(id uint) string { return fmt.Sprintf("structure:course:%d", id) }
func trackKey(id uint) string  { return fmt.Sprintf("structure:track:%d", id) }

func (c *redisStructureCache) GetModules(ctx context.Context, courseID uint) ([]domain.Module, bool) {
	var modules []domain.Module
	ok := c.get(ctx, courseKey(courseID), &modules)
	return modules, ok
}

func (c *redisStructureCache) SetModules(ctx context.Context, courseID uint, modules []domain.Module) {
	c.set(ctx, courseKey(courseID), modules)
}

func (c *redisStructureCache) GetLevels(ctx context.Context, trackID uint) ([]domain.Level, bool) {
	var levels []domain.Level
	ok := c.get(ctx, trackKey(trackID), &levels)
	return levels, ok
}

func (c *redisStructureCache) SetLevels(ctx context.Context, trackID uint, levels []domain.Level) {
	c.set(ctx, trackKey(trackID), levels)
}

func (c *redisStructureCache) InvalidateCourse(ctx context.Context, courseID uint) {
	c.del(ctx, courseKey(courseID))
}

func (c *redisStructureCache) InvalidateTrack(ctx context.Context, trackID uint) {
	c.del(ctx, trackKey(trackID))
}

// Cache failures are logged and treated as misses.
func (c *redisStructureCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("structure cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("structure cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *redisStructureCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Warn("structure cache write failed", "key", key, "error", err)
	}
}

func (c *redisStructureCache) del(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("structure cache invalidation failed", "key", key, "error", err)
	}
}

// NopStructureCache never hits.
type NopStructureCache struct{}

func (NopStructureCache) GetModules(context.Context, uint) ([]domain.Module, bool) { return nil, false }
func (NopStructureCache) SetModules(context.Context, uint, []domain.Module)       {}
func (NopStructureCache) GetLevels(context.Context, uint) ([]domain.Level, bool)   { return nil, false }
func (NopStructureCache) SetLevels(context.Context, uint, []domain.Level)         {}
func (NopStructureCache) InvalidateCourse(context.Context, uint)                  {}
func (NopStructureCache) InvalidateTrack(context.Context, uint)                   {}
