package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	redis_adapter "github.com/user/pdfscraper-service/internal/adapter/redis"
	"github.com/user/pdfscraper-service/internal/app"
	"github.com/user/pdfscraper-service/internal/delivery/http/handler"
	"github.com/user/pdfscraper-service/internal/delivery/http/router"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/config"
	"github.com/user/pdfscraper-service/pkg/logger"
	"github.com/user/pdfscraper-service/pkg/metrics"
)

const workerIdleInterval = 2 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code so that deferred cleanup always happens.
func run(args []string) int {
	flags := flag.NewFlagSet("api", flag.ContinueOnError)
	configPath := flags.String("config", "config.json", "path to the JSON config file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// --- Configuration ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}
	if cfg.Database.Driver == "" {
		slog.Error("The API server needs a database; set database.driver and database.dsn")
		return 1
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		slog.Error("Unable to create download directory", "dir", cfg.DownloadDir, "error", err)
		return 1
	}

	// --- Database Connections ---
	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("Unable to connect to database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer store.Close()
	slog.Info("Database connection established", "driver", store.Driver)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
		return 1
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)

	// --- Use Cases ---
	scraper, err := app.NewPageScraper(cfg)
	if err != nil {
		slog.Error("Unable to build scraper", "error", err)
		return 1
	}
	siteManager := usecase.NewSiteManager(visitedRepo, queueRepo, store.Metadata, store.Failed, cfg.DedupWindow())
	worker := usecase.NewSiteWorker(queueRepo, scraper, store.Metadata, store.Failed)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting site workers", "count", cfg.MaxThreads)
		usecase.RunSiteWorkers(ctx, worker, cfg.MaxThreads, workerIdleInterval)
		slog.Info("Site workers stopped")
	}()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(siteManager)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		stop()
		wg.Wait()
		return 1
	}

	wg.Wait()
	slog.Info("Server stopped")
	return 0
}
