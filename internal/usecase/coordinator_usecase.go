package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/user/pdfscraper-service/internal/entity"
)

var ErrInvalidConcurrency = errors.New("max concurrency must be at least 1")

// SiteObserver is told about every finished site. It is called concurrently
// from the scraping goroutines.
type SiteObserver func(ctx context.Context, result entity.SiteResult)

// ScrapeCoordinator scrapes many sites with bounded parallelism.
type ScrapeCoordinator interface {
	// Run returns the records of every site, concatenated in input order.
	Run(ctx context.Context, sites []string, maxConcurrency int) ([]entity.PdfMetadata, error)
	// RunSites returns one result per site, in input order.
	RunSites(ctx context.Context, sites []string, maxConcurrency int) ([]entity.SiteResult, error)
}

type scrapeCoordinatorUseCase struct {
	scraper  PageScraper
	observer SiteObserver
}

// NewScrapeCoordinator creates a coordinator. observer may be nil.
func NewScrapeCoordinator(scraper PageScraper, observer SiteObserver) ScrapeCoordinator {
	return &scrapeCoordinatorUseCase{scraper: scraper, observer: observer}
}

func (uc *scrapeCoordinatorUseCase) Run(ctx context.Context, sites []string, maxConcurrency int) ([]entity.PdfMetadata, error) {
	results, err := uc.RunSites(ctx, sites, maxConcurrency)
	if err != nil {
		return nil, err
	}
	return entity.Flatten(results), nil
}

func (uc *scrapeCoordinatorUseCase) RunSites(ctx context.Context, sites []string, maxConcurrency int) ([]entity.SiteResult, error) {
	if maxConcurrency < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, maxConcurrency)
	}

	// Each site owns results[i], so no locking is needed and the output
	// order is the input order whatever the completion order.
	results := make([]entity.SiteResult, len(sites))

	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for i, site := range sites {
		// Go blocks until a slot is free.
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = entity.Failed(site, err)
			} else {
				results[i] = uc.scraper.Scrape(ctx, site)
			}
			if uc.observer != nil {
				uc.observer(ctx, results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	slog.Info("Scrape run finished", "sites", len(sites), "failed_sites", failed, "max_concurrency", maxConcurrency)
	return results, nil
}
