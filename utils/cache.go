package utils

import (
	"context"
	"fmt"
	"time"

	"estately/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the Redis client used for property lookups.
var CacheClient *redis.Client

// InitCache connects the property cache client and checks it answers.
func InitCache(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis cache at %s: %w", cfg.RedisAddr, err)
	}
	CacheClient = client
	return client, nil
}
