package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickstay/booking/config"
	"github.com/quickstay/booking/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedisClient returns a singleton Redis client, or nil when REDIS_URL
// is unset or unreachable. Callers (the rate limiter) treat nil as
// "limiting disabled" rather than refusing to serve.
func GetRedisClient() *redis.Client {
	redisOnce.Do(func() {
		redisURL := config.Getenv("REDIS_URL", "")
		if redisURL == "" {
			logger.WarnLogger.Warn("REDIS_URL not set, rate limiting disabled")
			return
		}

		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid REDIS_URL: %v", err)
			return
		}

		client := redis.NewClient(opt)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := client.Ping(ctx).Result(); err != nil {
			logger.ErrorLogger.Errorf("Failed to connect to Redis: %v", err)
			return
		}

		redisClient = client
		logger.InfoLogger.Info("Connected to Redis")
	})

	return redisClient
}

// CloseRedis closes the Redis connection if one was opened.
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorLogger.Errorf("Error closing Redis connection: %v", err)
			return
		}
		logger.InfoLogger.Info("Redis connection closed")
	}
}
