package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/daykeep/backend/api/handler"
	"github.com/daykeep/backend/internal/config"
	"github.com/daykeep/backend/internal/events"
	"github.com/daykeep/backend/internal/infrastructure/marker"
	"github.com/daykeep/backend/internal/infrastructure/monitor"
	pgInfra "github.com/daykeep/backend/internal/infrastructure/postgres"
	redisInfra "github.com/daykeep/backend/internal/infrastructure/redis"
	"github.com/daykeep/backend/internal/metrics"
	"github.com/daykeep/backend/internal/middleware"
	"github.com/daykeep/backend/internal/router"
	"github.com/daykeep/backend/internal/services"
	"github.com/daykeep/backend/internal/services/lifecycle"
	"github.com/daykeep/backend/pkg/httpcontext"
	"github.com/daykeep/backend/pkg/keymutex"
	"github.com/daykeep/backend/pkg/logger"
	"github.com/daykeep/backend/repository/postgres"
	redisRepo "github.com/daykeep/backend/repository/redis"
	authUC "github.com/daykeep/backend/usecase/auth"
	groupUC "github.com/daykeep/backend/usecase/group"
	profileUC "github.com/daykeep/backend/usecase/profile"
	streakUC "github.com/daykeep/backend/usecase/streak"
	taskUC "github.com/daykeep/backend/usecase/task"
	tasklogUC "github.com/daykeep/backend/usecase/tasklog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET is required")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	markerStore, err := marker.Open(cfg.Reminder.MarkerPath, "reminders")
	if err != nil {
		zapLogger.Fatal("failed to open marker store", zap.Error(err))
	}
	manager.Register("markers", func(ctx context.Context) error {
		return markerStore.Close()
	})

	mon := monitor.New(pool, redisClient, markerStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	hub := events.NewHub(events.Config{
		QueueSize:         cfg.Events.QueueSize,
		KeepaliveInterval: cfg.Events.KeepaliveInterval,
	}, zapLogger)
	hub.Start()
	manager.Register("events_hub", func(ctx context.Context) error {
		hub.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	taskLogRepo := postgres.NewTaskLogRepository(pool)
	streakRepo := postgres.NewStreakRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	locks := keymutex.New()

	streakUseCase := streakUC.New(streakRepo, taskLogRepo, hub, locks, zapLogger)
	tasklogUseCase := tasklogUC.New(taskRepo, taskLogRepo, groupRepo, streakUseCase, hub, locks, zapLogger)
	taskUseCase := taskUC.New(taskRepo, taskLogRepo, groupRepo, streakRepo, streakUseCase, hub, locks, zapLogger)
	groupUseCase := groupUC.New(groupRepo, taskRepo, taskLogRepo, streakUseCase, hub, locks, zapLogger)
	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.SessionTTL, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)

	if cfg.Reminder.Enabled {
		reminder := services.NewReminder(streakRepo, markerStore, hub, services.ReminderConfig{
			Schedule:      cfg.Reminder.Schedule,
			Hour:          cfg.Reminder.Hour,
			RetentionDays: cfg.Reminder.RetentionDays,
		}, zapLogger)
		reminder.Start()
		manager.Register("reminder", func(ctx context.Context) error {
			reminder.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Group:   apiHandler.NewGroupHandler(groupUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Log:     apiHandler.NewLogHandler(tasklogUseCase, ctxAdapter, zapLogger),
		Streak:  apiHandler.NewStreakHandler(streakUseCase, ctxAdapter, zapLogger),
		Events:  apiHandler.NewEventsHandler(hub, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = metrics.Handler()
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
