package db

import (
	"context"
	"time"

	"DatasetCatalog/internal/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// InitRedis connects the role cache. An empty address leaves RDB nil and
// the cache disabled.
func InitRedis(addr string) {
	if addr == "" {
		logger.Warn("redis_disabled", nil)
		return
	}
	RDB = redis.NewClient(&redis.Options{Addr: addr})
}

func PingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return RDB.Ping(ctx).Err()
}

func CloseRedis() {
	if RDB != nil {
		_ = RDB.Close()
	}
}
