// File: utils/cache.go
package utils

import (
	"brandconnect/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs keyed locks and short-lived state.
	CacheClient *redis.Client
	// FeedClient carries the conversation change feed (pub/sub).
	FeedClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         config.AppConfig.RedisAddr,
		Password:     config.AppConfig.RedisPassword,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client the server needs.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	FeedClient = newRedisClient(config.AppConfig.RedisFeedDB, "Feed")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetFeedClient returns the pub/sub client for conversation events.
func GetFeedClient() *redis.Client {
	if FeedClient == nil {
		FeedClient = newRedisClient(config.AppConfig.RedisFeedDB, "Feed")
	}
	return FeedClient
}
