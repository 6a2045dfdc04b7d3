// Package app builds the object graph shared by the CLI and the API server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/pdfscraper-service/internal/adapter/chromedp_browser"
	"github.com/user/pdfscraper-service/internal/adapter/httpfetch"
	"github.com/user/pdfscraper-service/internal/adapter/postgres"
	"github.com/user/pdfscraper-service/internal/adapter/sqlite"
	"github.com/user/pdfscraper-service/internal/adapter/static_browser"
	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/config"
	"github.com/user/pdfscraper-service/pkg/proxy"
)

// NewPageScraper wires the configured browser and the HTTP fetcher into a PageScraper.
func NewPageScraper(cfg *config.Config) (usecase.PageScraper, error) {
	proxies, err := proxy.NewManager(cfg.Proxies, cfg.UserAgents)
	if err != nil {
		return nil, fmt.Errorf("proxy manager: %w", err)
	}

	var browser repository.BrowserRepository
	switch cfg.Browser {
	case "static":
		browser = static_browser.NewStaticBrowser(proxies, cfg.FetchTimeout())
	default:
		browser = chromedp_browser.NewChromedpBrowser(proxies, nil, "")
	}
	slog.Info("Browser selected", "browser", cfg.Browser)

	client := httpfetch.NewClient(proxies, cfg.FetchTimeout(), cfg.MaxPDFBytes)
	fetcher := usecase.NewPDFFetcher(client)
	return usecase.NewPageScraper(browser, fetcher, cfg.DownloadDir, cfg.SiteTimeout()), nil
}

// Store is the relational side of persistence.
type Store struct {
	Driver   string
	Metadata repository.PdfMetadataRepository
	Failed   repository.FailedSiteRepository
	close    func()
}

func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStore connects to the configured database. It returns nil, nil when
// no database driver is configured.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Driver:   cfg.Driver,
			Metadata: postgres.NewPdfMetadataRepo(pool),
			Failed:   postgres.NewFailedSiteRepo(pool),
			close:    pool.Close,
		}, nil
	case "sqlite":
		db, err := sqlite.NewStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   cfg.Driver,
			Metadata: db,
			Failed:   db,
			close: func() {
				if err := db.Close(); err != nil {
					slog.Warn("Failed to close sqlite store", "error", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
