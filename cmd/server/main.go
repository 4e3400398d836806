package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/datastore"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase"
	"github.com/fastygo/taskboard/usecase/workflow"
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

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	resolution := datastore.Resolve(cfg.Database, zapLogger)
	store, err := datastore.Open(appCtx, resolution, cfg.Database, cfg.Migrations.Enabled, zapLogger)
	if err != nil {
		zapLogger.Fatal("task store unavailable", zap.String("driver", string(resolution.Driver)), zap.Error(err))
	}
	manager.RegisterCloser("task_store", store)

	mon := monitor.New(10*time.Second, zapLogger)
	mon.Add("task_store", store.Ping, 3*time.Second)

	sessions := openSessionStore(appCtx, cfg, manager, zapLogger)
	mon.Add("session_store", sessions.Ping, 2*time.Second)

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	controller := workflow.New(store, zapLogger)
	dispatcher := usecase.NewDispatcher()
	controller.Register(dispatcher)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Workflow:  apiHandler.NewWorkflowHandler(sessions, controller, dispatcher, cfg.Session.TTL, ctxAdapter, zapLogger),
		Reference: apiHandler.NewReferenceHandler(cfg.Reference.Owners, controller, dispatcher, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(store, controller, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, string(resolution.Driver), ctxAdapter, zapLogger),
	}

	sessionCookie := middleware.NewSessionCookie(cfg.Session, cfg.Environment == "production", zapLogger)
	r := router.New(handlers, sessionCookie.Handle)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("task_store", string(resolution.Driver)),
			zap.String("source", resolution.Source))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()
	stop()
	zapLogger.Info("shutdown signal received")

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openSessionStore picks Redis when REDIS_URL is set and the local bbolt file otherwise.
func openSessionStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.SessionRepository {
	if cfg.Redis.URL != "" {
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", client)
		zapLogger.Info("sessions stored in redis")
		return redisRepo.NewSessionRepository(client, cfg.Session.TTL)
	}

	store, err := boltRepo.Open(cfg.Session.StorePath, cfg.Session.TTL)
	if err != nil {
		zapLogger.Fatal("failed to open session store", zap.String("path", cfg.Session.StorePath), zap.Error(err))
	}
	manager.RegisterCloser("session_store", store)

	janitor, err := services.NewSessionJanitor(store, cfg.Session.CleanupInterval, zapLogger)
	if err != nil {
		zapLogger.Fatal("session janitor setup failed", zap.Error(err))
	}
	janitor.Start()
	manager.Register("session_janitor", janitor.Stop)

	zapLogger.Info("sessions stored locally", zap.String("path", cfg.Session.StorePath))
	return store
}
