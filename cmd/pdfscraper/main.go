package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/pdfscraper-service/internal/app"
	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/config"
	"github.com/user/pdfscraper-service/pkg/logger"
	"github.com/user/pdfscraper-service/pkg/metrics"
	"github.com/user/pdfscraper-service/pkg/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("pdfscraper", flag.ContinueOnError)
	configPath := flags.String("config", "config.json", "path to the JSON config file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer srv.Close()
	}

	sites, err := utils.ReadLines(cfg.WebsitesFile)
	if err != nil {
		slog.Error("Failed to read websites file", "path", cfg.WebsitesFile, "error", err)
		return 1
	}
	slog.Info("Loaded sites", "count", len(sites), "max_threads", cfg.MaxThreads)

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		slog.Error("Unable to create download directory", "dir", cfg.DownloadDir, "error", err)
		return 1
	}

	scraper, err := app.NewPageScraper(cfg)
	if err != nil {
		slog.Error("Unable to build scraper", "error", err)
		return 1
	}

	coordinator := usecase.NewScrapeCoordinator(scraper, nil)
	start := time.Now()
	results, err := coordinator.RunSites(ctx, sites, cfg.MaxThreads)
	if err != nil {
		slog.Error("Scrape run rejected", "error", err)
		return 1
	}
	records := entity.Flatten(results)
	logSummary(results, records, time.Since(start))

	// Persistence starts only now, on a fresh context, so neither an
	// unreachable database nor an interrupt during scraping loses the run.
	exportCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := app.Persist(exportCtx, cfg, results); err != nil {
		slog.Error("Persisting results failed", "error", err)
		return 1
	}
	return 0
}

func logSummary(results []entity.SiteResult, records []entity.PdfMetadata, elapsed time.Duration) {
	failed, degraded := 0, 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	for _, m := range records {
		if m.Degraded() {
			degraded++
		}
	}
	slog.Info("Scraping complete",
		"sites", len(results),
		"sites_scraped", len(results)-failed,
		"sites_failed", failed,
		"records", len(records),
		"degraded_records", degraded,
		"duration_ms", elapsed.Milliseconds(),
	)
}
