package cron

import (
	"context"
	"fmt"
	"time"

	"estately/config"
	"estately/models"
	"estately/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Persister stores a notification built at enqueue time.
type Persister interface {
	Persist(ctx context.Context, n *models.Notification) error
}

// RedisOpt is the connection shared by the notification queue client and worker.
func RedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// InitNotificationWorker runs the notification worker in background and
// returns the server so the caller can shut it down.
func InitNotificationWorker(ctx context.Context, cfg config.Config, persister Persister, logger *zap.Logger) *asynq.Server {
	concurrency := cfg.NotifyWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.NotificationQueue: 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationCreate, handleNotificationTask(persister, logger))

	go monitorRedisConnection(ctx, cfg, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("[NotificationWorker] starting", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("[NotificationWorker] failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("[NotificationWorker] max retry attempts reached")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleNotificationTask(persister Persister, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("[NotificationHandler] dropping invalid task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := persister.Persist(ctx, &n); err != nil {
			logger.Warn("[NotificationHandler] persist failed, will retry",
				zap.String("notificationId", n.ID),
				zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("[NotificationWorker] redis connection lost", zap.Error(err))
			}
		}
	}
}
