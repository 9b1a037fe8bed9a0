// Package cache is a Redis read-through cache for effective working hours.
// A nil client or non-positive TTL disables it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinicsched/pkg/logger"
	"clinicsched/pkg/metrics"
	"clinicsched/pkg/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "working_hours"

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl, log: log}
}

func (c *RedisCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// key wraps the tenant in a hash tag so the tenant scan pattern stops at the
// closing brace. Scope ids cannot contain braces.
func key(tenantID, providerID string) string {
	return fmt.Sprintf("%s:{%s}:%s", keyPrefix, tenantID, providerID)
}

func tenantPattern(tenantID string) string {
	return fmt.Sprintf("%s:{%s}:*", keyPrefix, globEscaper.Replace(tenantID))
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func (c *RedisCache) Get(ctx context.Context, tenantID, providerID string) (*model.EffectiveHours, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key(tenantID, providerID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Working hours cache read failed", "tenant_id", tenantID, "provider_id", providerID, "error", err)
		}
		metrics.IncCacheLookup("miss")
		return nil, false
	}
	var eff model.EffectiveHours
	if err := json.Unmarshal([]byte(val), &eff); err != nil {
		metrics.IncCacheLookup("miss")
		return nil, false
	}
	metrics.IncCacheLookup("hit")
	return &eff, true
}

func (c *RedisCache) Set(ctx context.Context, eff *model.EffectiveHours) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(eff)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key(eff.TenantID, eff.ProviderID), data, c.ttl).Err(); err != nil {
		c.log.Warn("Working hours cache write failed", "tenant_id", eff.TenantID, "error", err)
	}
}

// Invalidate drops the cached entry for a provider. An empty providerID
// drops every entry of the tenant, since providers inherit the tenant default.
func (c *RedisCache) Invalidate(ctx context.Context, tenantID, providerID string) {
	if !c.enabled() {
		return
	}
	if providerID != "" {
		if err := c.redis.Del(ctx, key(tenantID, providerID)).Err(); err != nil {
			c.log.Warn("Working hours cache invalidation failed", "tenant_id", tenantID, "provider_id", providerID, "error", err)
		}
		return
	}

	iter := c.redis.Scan(ctx, 0, tenantPattern(tenantID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Working hours cache scan failed", "tenant_id", tenantID, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("Working hours cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
}
