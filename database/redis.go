package database

import (
	"context"
	"lms/config"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the global Redis client used for derived read models.
// Derived documents (dashboards) are cached here and are always
// recomputable from the event tables, so the cache is never the
// source of truth.
var Cache *redis.Client

// ConnectRedis initializes the Redis client
func ConnectRedis() {
	Cache = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := Cache.Ping(ctx).Err(); err != nil {
		// The service works without Redis, reads just recompute every time
		log.Printf("Warning: Redis not reachable at %s: %v", config.AppConfig.RedisAddr, err)
	}
}
