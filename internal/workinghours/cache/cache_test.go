package cache

import (
	"context"
	"testing"
	"time"

	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl, logger.Discard()), mr
}

func effective(tenant, provider string) *model.EffectiveHours {
	return &model.EffectiveHours{
		TenantID:   tenant,
		ProviderID: provider,
		Source:     model.HoursSourceTenant,
		Hours:      model.WorkingHours{"monday": {Start: "09:00", End: "17:00"}},
	}
}

func TestRedisCache_RoundTripAndTTL(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "t1", "P")
	assert.False(t, ok)

	c.Set(ctx, effective("t1", "P"))
	got, ok := c.Get(ctx, "t1", "P")
	require.True(t, ok)
	assert.Equal(t, "09:00", got.Hours["monday"].Start)
	assert.Equal(t, model.HoursSourceTenant, got.Source)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "t1", "P")
	assert.False(t, ok)
}

func TestRedisCache_InvalidateProvider(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, effective("t1", "P"))
	c.Set(ctx, effective("t1", "Q"))
	c.Invalidate(ctx, "t1", "P")

	_, ok := c.Get(ctx, "t1", "P")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "t1", "Q")
	assert.True(t, ok)
}

func TestRedisCache_InvalidateTenant(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, effective("t1", "P"))
	c.Set(ctx, effective("t1", ""))
	c.Set(ctx, effective("t2", "P"))
	c.Invalidate(ctx, "t1", "")

	_, ok := c.Get(ctx, "t1", "P")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "t1", "")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "t2", "P")
	assert.True(t, ok)
}

func TestRedisCache_InvalidateTenantSharingPrefix(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, effective("t1", "P"))
	c.Set(ctx, effective("t1:x", "P"))
	c.Set(ctx, effective("t1:x", ""))
	assert.True(t, mr.Exists("working_hours:{t1:x}:P"))

	c.Invalidate(ctx, "t1", "")

	_, ok := c.Get(ctx, "t1", "P")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "t1:x", "P")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "t1:x", "")
	assert.True(t, ok)
}

func TestTenantPattern_EscapesGlob(t *testing.T) {
	assert.Equal(t, `working_hours:{t1}:*`, tenantPattern("t1"))
	assert.Equal(t, `working_hours:{a\*b\?}:*`, tenantPattern(`a*b?`))
}

func TestRedisCache_Disabled(t *testing.T) {
	ctx := context.Background()

	var nilCache *RedisCache
	nilCache.Set(ctx, effective("t1", "P"))
	_, ok := nilCache.Get(ctx, "t1", "P")
	assert.False(t, ok)

	noClient := NewRedisCache(nil, time.Minute, logger.Discard())
	noClient.Set(ctx, effective("t1", "P"))
	noClient.Invalidate(ctx, "t1", "")
	_, ok = noClient.Get(ctx, "t1", "P")
	assert.False(t, ok)

	c, mr := newCache(t, 0)
	c.Set(ctx, effective("t1", "P"))
	assert.Empty(t, mr.Keys())
}
