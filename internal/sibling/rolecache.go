package sibling

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"DatasetCatalog/internal/logger"

	"github.com/redis/go-redis/v9"
)

type roleLookup interface {
	UserIDsByRole(ctx context.Context, role string) ([]string, error)
}

// RoleCache keeps role membership lists in Redis. Redis failures fall
// through to the wrapped lookup.
type RoleCache struct {
	next roleLookup
	rdb  *redis.Client
	ttl  time.Duration
}

func NewRoleCache(next roleLookup, rdb *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{next: next, rdb: rdb, ttl: ttl}
}

func roleKey(role string) string {
	return "roles:" + strings.ToUpper(role)
}

func (c *RoleCache) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	if c.rdb == nil {
		return c.next.UserIDsByRole(ctx, role)
	}
	key := roleKey(role)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []string
		if jerr := json.Unmarshal(raw, &ids); jerr == nil {
			return ids, nil
		}
		logger.Warn("role_cache_corrupt", map[string]any{"key": key})
	case err != redis.Nil:
		logger.Warn("role_cache_unavailable", map[string]any{"key": key, "error": err.Error()})
	}

	ids, err := c.next.UserIDsByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(ids); jerr == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			logger.Warn("role_cache_store_failed", map[string]any{"key": key, "error": serr.Error()})
		}
	}
	return ids, nil
}
