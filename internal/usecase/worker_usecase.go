package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/metrics"
)

// ErrQueueEmpty is returned by ProcessSiteFromQueue when there was nothing to do.
var ErrQueueEmpty = errors.New("scrape queue is empty")

// SiteWorker defines the interface for the queue-driven scraping process.
type SiteWorker interface {
	ProcessSiteFromQueue(ctx context.Context) error
}

type siteWorkerUseCase struct {
	queueRepo    repository.QueueRepository
	scraper      PageScraper
	metadataRepo repository.MetadataExporter
	observer     SiteObserver
}

// NewSiteWorker creates a new instance of the site worker use case.
func NewSiteWorker(
	queueRepo repository.QueueRepository,
	scraper PageScraper,
	metadataRepo repository.MetadataExporter,
	failedSiteRepo repository.FailedSiteRepository,
) SiteWorker {
	return &siteWorkerUseCase{
		queueRepo:    queueRepo,
		scraper:      scraper,
		metadataRepo: metadataRepo,
		observer:     NewFailedSiteRecorder(failedSiteRepo),
	}
}

// ProcessSiteFromQueue pops a single site, scrapes it and stores the outcome.
func (uc *siteWorkerUseCase) ProcessSiteFromQueue(ctx context.Context) error {
	siteURL, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrQueueEmpty
		}
		return fmt.Errorf("failed to pop site from queue: %w", err)
	}
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.SitesInQueue.Set(float64(size))
	}

	slog.Info("Processing site from queue", "url", siteURL)
	result := uc.scraper.Scrape(ctx, siteURL)

	if !result.Failed() && len(result.Records) > 0 {
		if err := uc.metadataRepo.Export(ctx, result.Records); err != nil {
			// The PDFs are on disk already; only the rows are lost.
			return fmt.Errorf("failed to save PDF metadata for %s: %w", siteURL, err)
		}
	}
	uc.observer(ctx, result)
	return nil
}

// RunSiteWorkers runs n workers until ctx is cancelled. A worker that finds
// the queue empty, or hits an error, waits idle before polling again.
func RunSiteWorkers(ctx context.Context, worker SiteWorker, n int, idle time.Duration) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				err := worker.ProcessSiteFromQueue(ctx)
				if err == nil {
					continue
				}
				if !errors.Is(err, ErrQueueEmpty) {
					slog.Error("Worker iteration failed", "worker", id, "error", err)
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(idle):
				}
			}
		}(i)
	}
	wg.Wait()
}
