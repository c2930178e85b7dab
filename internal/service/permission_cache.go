package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"repairshop/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	permissionCachePrefix  = "perm:role:"
	globalGenerationKey    = "perm:gen:global"
	roleGenerationKeyStart = "perm:gen:role:"
)

// PermissionCache stores resolved permission trees per role.
// Cache failures are logged and treated as misses.
//
// Entries are keyed by a generation read before the assignment rows are
// loaded. Invalidate and Flush bump the generation instead of deleting, so a
// resolve that started before a change can only write under a key no later
// reader looks at.
type PermissionCache interface {
	// Generation returns the current generation of roleID; ok is false when
	// the cache is unavailable and must be bypassed.
	Generation(ctx context.Context, roleID uint) (gen string, ok bool)
	Get(ctx context.Context, roleID uint, gen string) ([]MenuPermission, bool)
	Set(ctx context.Context, roleID uint, gen string, tree []MenuPermission)
	Invalidate(ctx context.Context, roleID uint)
	Flush(ctx context.Context)
}

type redisPermissionCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewPermissionCache returns a Redis-backed cache, or a no-op one when client is nil.
func NewPermissionCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger, m *metrics.Metrics) PermissionCache {
	if client == nil {
		return nopPermissionCache{}
	}
	return &redisPermissionCache{client: client, ttl: ttl, logger: logger, metrics: m}
}

func permissionKey(roleID uint, gen string) string {
	return permissionCachePrefix + strconv.FormatUint(uint64(roleID), 10) + ":g" + gen
}

func roleGenerationKey(roleID uint) string {
	return roleGenerationKeyStart + strconv.FormatUint(uint64(roleID), 10)
}

func generationValue(v interface{}) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}

func (c *redisPermissionCache) Generation(ctx context.Context, roleID uint) (string, bool) {
	vals, err := c.client.MGet(ctx, globalGenerationKey, roleGenerationKey(roleID)).Result()
	if err != nil || len(vals) != 2 {
		c.logger.WithError(err).Warn("permission cache generation read failed")
		return "", false
	}
	return generationValue(vals[0]) + "." + generationValue(vals[1]), true
}

func (c *redisPermissionCache) Get(ctx context.Context, roleID uint, gen string) ([]MenuPermission, bool) {
	raw, err := c.client.Get(ctx, permissionKey(roleID, gen)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("permission cache read failed")
		}
		c.metrics.PermissionCacheMisses.Inc()
		return nil, false
	}

	var tree []MenuPermission
	if err := json.Unmarshal(raw, &tree); err != nil {
		c.logger.WithError(err).Warn("permission cache entry corrupted")
		c.metrics.PermissionCacheMisses.Inc()
		return nil, false
	}
	c.metrics.PermissionCacheHits.Inc()
	return tree, true
}

func (c *redisPermissionCache) Set(ctx context.Context, roleID uint, gen string, tree []MenuPermission) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, permissionKey(roleID, gen), raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("permission cache write failed")
	}
}

// Invalidate retires every tree cached for roleID.
func (c *redisPermissionCache) Invalidate(ctx context.Context, roleID uint) {
	if err := c.client.Incr(ctx, roleGenerationKey(roleID)).Err(); err != nil {
		c.logger.WithError(err).Warn("permission cache invalidation failed")
	}
}

// Flush retires every cached tree; menu catalog changes affect all roles.
func (c *redisPermissionCache) Flush(ctx context.Context) {
	if err := c.client.Incr(ctx, globalGenerationKey).Err(); err != nil {
		c.logger.WithError(err).Warn("permission cache flush failed")
	}
}

type nopPermissionCache struct{}

func (nopPermissionCache) Generation(context.Context, uint) (string, bool)            { return "", false }
func (nopPermissionCache) Get(context.Context, uint, string) ([]MenuPermission, bool) { return nil, false }
func (nopPermissionCache) Set(context.Context, uint, string, []MenuPermission)        {}
func (nopPermissionCache) Invalidate(context.Context, uint)                           {}
func (nopPermissionCache) Flush(context.Context)                                      {}
