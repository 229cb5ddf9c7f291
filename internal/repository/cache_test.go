package repository

import (
	"context"
	"testing"
	"time"

	"learnpath-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewStructureCache_NilClient(t *testing.T) {
	c := NewStructureCache(nil, time.Minute)
	assert.IsType(t, NopStructureCache{}, c)

	ctx := context.Background()
	c.SetModules(ctx, 1, []domain.Module{{ID: "m1"}})
	_, ok := c.GetModules(ctx, 1)
	assert.False(t, ok)
}

func TestStructureCache_UnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	c := NewStructureCache(client, time.Minute)
	ctx := context.Background()

	c.SetLevels(ctx, 3, []domain.Level{{ID: "lv1"}})
	levels, ok := c.GetLevels(ctx, 3)
	assert.False(t, ok)
	assert.Empty(t, levels)
	c.InvalidateTrack(ctx, 3)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "structure:course:7", courseKey(7))
	assert.Equal(t, "structure:track:7", trackKey(7))
}
