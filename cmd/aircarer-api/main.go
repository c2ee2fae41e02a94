package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aircarer/internal/api"
	"aircarer/internal/config"
	"aircarer/internal/jobs"
	applog "aircarer/internal/logger"
	"aircarer/internal/pubsub"
	"aircarer/internal/schema"
	"aircarer/internal/service"
	"aircarer/internal/storage"
	"aircarer/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Redis is optional; without it events only reach WebSocket clients
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, running without pub/sub, replay and jobs",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
			rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// Pub/sub bus
	bus := pubsub.New(rdb, logger)

	// WebSocket hub
	hub := ws.NewHub(logger)
	go hub.Run()
	bus.SetWSHub(hub)

	// Photo storage
	stor, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	registry := service.NewRegistry(clock.WallClock, bus, logger)
	registry.SetPhotoStore(storage.NewPhotoStore(stor, storage.NewPhotoPolicy(cfg.Storage.MaxPhotoMB)))

	// Background jobs
	if cfg.Jobs.Enabled && rdb != nil {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		jobServer, jobClient := jobs.NewJobServer(redisOpt, registry, bus, logger)
		if err := jobServer.Start(); err != nil {
			logger.Fatal("Job server failed", zap.Error(err))
		}
		defer jobServer.Stop()
		registry.SetJobClient(service.NewAsynqJobClient(jobClient), cfg.Jobs.QueueReminderAfter)
	}

	hub.SetCommandHandler(ws.NewCommandHandler(registry, logger))

	schemas, err := schema.NewCompilerWithCache(cfg.Schema.CacheSize, cfg.Schema.CacheTTL)
	if err != nil {
		logger.Fatal("Failed to load schemas", zap.Error(err))
	}

	deps := api.Dependencies{
		Registry:      registry,
		Schemas:       schemas,
		Hub:           hub,
		Log:           logger,
		MaxPhotoBytes: storage.NewPhotoPolicy(cfg.Storage.MaxPhotoMB).MaxBytes(),
	}
	if streams := bus.GetStreams(); streams != nil {
		hub.SetStreamsProvider(streams)
		deps.Streams = streams
	}

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Timeout middleware - skip for WebSocket upgrades
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, req)
				return
			}
			middleware.Timeout(cfg.Server.RequestTimeout)(next).ServeHTTP(w, req)
		})
	})

	r.Mount("/v1", api.Routes(deps))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	logger.Info("Starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("redis", rdb != nil),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
