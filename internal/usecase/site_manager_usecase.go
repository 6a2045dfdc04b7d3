package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/metrics"
	"github.com/user/pdfscraper-service/pkg/utils"
)

var (
	ErrSiteRecentlyScraped = errors.New("site has been scraped recently and force_scrape is false")
)

// SiteManager defines the interface for submitting and checking sites.
type SiteManager interface {
	Submit(ctx context.Context, url string, force bool) (string, error)
	GetStatus(ctx context.Context, url string) (*entity.SiteStatus, error)
	ListPDFs(ctx context.Context, url string) ([]entity.PdfMetadata, error)
}

type siteManagerUseCase struct {
	visitedRepo    repository.VisitedRepository
	queueRepo      repository.QueueRepository
	metadataRepo   repository.PdfMetadataRepository
	failedSiteRepo repository.FailedSiteRepository
	dedupWindow    time.Duration
}

// NewSiteManager creates a new SiteManager use case.
func NewSiteManager(
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	metadataRepo repository.PdfMetadataRepository,
	failedSiteRepo repository.FailedSiteRepository,
	dedupWindow time.Duration,
) SiteManager {
	return &siteManagerUseCase{
		visitedRepo:    visitedRepo,
		queueRepo:      queueRepo,
		metadataRepo:   metadataRepo,
		failedSiteRepo: failedSiteRepo,
		dedupWindow:    dedupWindow,
	}
}

func (uc *siteManagerUseCase) Submit(ctx context.Context, url string, force bool) (string, error) {
	siteID := utils.HashURL(url)

	if force {
		if err := uc.visitedRepo.RemoveVisited(ctx, url); err != nil {
			slog.Warn("Failed to remove visited key for forced scrape", "url", url, "error", err)
		}
	} else {
		isVisited, err := uc.visitedRepo.IsVisited(ctx, url)
		if err != nil {
			return "", err
		}
		if isVisited {
			return siteID, ErrSiteRecentlyScraped
		}
	}

	if err := uc.queueRepo.Push(ctx, url); err != nil {
		return "", err
	}
	metrics.SitesInQueue.Inc()

	if err := uc.visitedRepo.MarkVisited(ctx, url, uc.dedupWindow); err != nil {
		// The site is queued; at worst a second submission queues it again.
		slog.Error("Failed to mark site as visited after queueing", "url", url, "error", err)
	}

	return siteID, nil
}

func (uc *siteManagerUseCase) GetStatus(ctx context.Context, url string) (*entity.SiteStatus, error) {
	records, err := uc.metadataRepo.FindBySite(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return &entity.SiteStatus{
			URL:           url,
			CurrentStatus: entity.StatusCompleted,
			PDFCount:      len(records),
		}, nil
	}

	failed, err := uc.failedSiteRepo.FindByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		return &entity.SiteStatus{
			URL:                 url,
			CurrentStatus:       entity.StatusFailed,
			LastScrapeTimestamp: &failed.LastAttemptTimestamp,
			FailureReason:       failed.FailureReason,
		}, nil
	}

	isVisited, err := uc.visitedRepo.IsVisited(ctx, url)
	if err != nil {
		return nil, err
	}
	if isVisited {
		return &entity.SiteStatus{
			URL:           url,
			CurrentStatus: entity.StatusPending,
		}, nil
	}

	return &entity.SiteStatus{
		URL:           url,
		CurrentStatus: entity.StatusNotFound,
	}, nil
}

func (uc *siteManagerUseCase) ListPDFs(ctx context.Context, url string) ([]entity.PdfMetadata, error) {
	return uc.metadataRepo.FindBySite(ctx, url)
}
