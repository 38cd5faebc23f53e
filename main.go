package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"estately/config"
	"estately/cron"
	"estately/database"
	bookingRepo "estately/database/repository/booking"
	notificationRepo "estately/database/repository/notification"
	propertyRepo "estately/database/repository/property"
	recordsRepo "estately/database/repository/records"
	userRepoPkg "estately/database/repository/user"
	"estately/handlers"
	"estately/middleware"
	"estately/routes"
	"estately/services/booking"
	"estately/services/notification"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()
	utils.SetJWTSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()

	// repositories.
	bookings, err := bookingRepo.NewStoreBookingRepo(ctx, store, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to prepare bookings: %v", err)
	}
	notifications, err := notificationRepo.NewStoreNotificationRepo(ctx, store)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to prepare notifications: %v", err)
	}
	users := userRepoPkg.NewStoreUserRepo(store)

	owners := propertyRepo.NewStorePropertyRepo(store)
	var properties propertyRepo.PropertyRepository = owners
	var redisClients []*redis.Client
	if cache, err := utils.InitCache(cfg); err != nil {
		logger.Warn("main: property cache disabled", zap.Error(err))
	} else {
		defer cache.Close()
		redisClients = append(redisClients, cache)
		properties = &propertyRepo.CachedPropertyRepo{
			Inner:  properties,
			Cache:  cache,
			TTL:    cfg.PropertyCacheTTL,
			Logger: logger,
		}
	}

	// notifications.
	storeDispatcher := &notification.StoreDispatcher{Repo: notifications, Logger: logger}
	var dispatcher notification.Dispatcher = storeDispatcher
	var worker *asynq.Server
	if cfg.NotifyAsync {
		queue := asynq.NewClient(cron.RedisOpt(cfg))
		defer queue.Close()
		dispatcher = &notification.QueueDispatcher{Client: queue, Logger: logger}
		worker = cron.InitNotificationWorker(ctx, cfg, storeDispatcher, logger)
	}

	// services.
	bookingService := &booking.DefaultBookingService{
		Bookings:   bookings,
		Properties: properties,
		Owners:     owners,
		Users:      users,
		Notifier:   dispatcher,
		PageSizes:  cfg.PageSizes,
		Logger:     logger,
	}
	notificationService := &notification.DefaultNotificationService{Repo: notifications}

	handlerBundle := handlers.NewHandlerBundle(
		users,
		handlers.NewBookingHandler(bookingService),
		handlers.NewNotificationHandler(notificationService),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSAllowOrigins)

	utils.StartHealthMonitor(ctx, store, redisClients, time.Minute)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}
	logger.Sugar().Infof("Starting server on %s (store=%s, asyncNotify=%t)...", srv.Addr, cfg.StoreBackend, cfg.NotifyAsync)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	logger.Sugar().Info("main: server stopped gracefully")
}

// openStore builds the record store selected by STORE_BACKEND and the
// function that releases it.
func openStore(cfg config.Config, logger *zap.Logger) (recordsRepo.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendREST:
		return recordsRepo.NewRESTStore(cfg.StoreBaseURL, cfg.StoreTimeout), func() {}, nil
	case config.BackendMongo:
		client, err := database.InitDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("main: mongo disconnect failed", zap.Error(err))
			}
		}
		return recordsRepo.NewMongoStore(client, cfg.MongoDatabase, cfg.StoreTimeout), closeFn, nil
	case config.BackendMemory:
		logger.Warn("main: using in-memory store, data is lost on restart")
		s := recordsRepo.NewMemoryStore()
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
