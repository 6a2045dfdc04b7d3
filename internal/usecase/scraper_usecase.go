package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/metrics"
	"github.com/user/pdfscraper-service/pkg/utils"
)

// PageScraper scrapes the PDF links of a single site.
type PageScraper interface {
	// Scrape never returns an error; a site-level failure is reported as a
	// failed SiteResult with no records.
	Scrape(ctx context.Context, siteURL string) entity.SiteResult
}

type pageScraperUseCase struct {
	browser     repository.BrowserRepository
	fetcher     PDFFetcher
	downloadDir string
	timeout     time.Duration
}

// NewPageScraper creates a new page scraper. A zero timeout disables the per-site deadline.
func NewPageScraper(browser repository.BrowserRepository, fetcher PDFFetcher, downloadDir string, timeout time.Duration) PageScraper {
	return &pageScraperUseCase{
		browser:     browser,
		fetcher:     fetcher,
		downloadDir: downloadDir,
		timeout:     timeout,
	}
}

func (uc *pageScraperUseCase) Scrape(ctx context.Context, siteURL string) entity.SiteResult {
	metrics.SiteScrapesInFlight.Inc()
	defer metrics.SiteScrapesInFlight.Dec()

	startTime := time.Now()
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	pageTitle, records, err := uc.scrape(ctx, siteURL)
	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", repository.ErrSiteTimeout, uc.timeout, err)
		}
		errorType := ErrorType(err)
		metrics.SiteScrapesTotal.WithLabelValues(string(entity.SiteFailed), errorType).Inc()
		metrics.SiteScrapeDuration.WithLabelValues(string(entity.SiteFailed)).Observe(duration.Seconds())
		slog.Error("Site scrape failed", "url", siteURL, "host", utils.Hostname(siteURL), "error_type", errorType, "error", err)

		result := entity.Failed(siteURL, err)
		result.Duration = duration
		return result
	}

	metrics.SiteScrapesTotal.WithLabelValues(string(entity.SiteScraped), "").Inc()
	metrics.SiteScrapeDuration.WithLabelValues(string(entity.SiteScraped)).Observe(duration.Seconds())
	slog.Info("Site scraped", "url", siteURL, "host", utils.Hostname(siteURL), "title", pageTitle, "pdf_count", len(records), "duration_ms", duration.Milliseconds())

	result := entity.Scraped(siteURL, pageTitle, records)
	result.Duration = duration
	return result
}

func (uc *pageScraperUseCase) scrape(ctx context.Context, siteURL string) (string, []entity.PdfMetadata, error) {
	session, err := uc.browser.NewSession(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", repository.ErrSessionFailed, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("Failed to close browser session", "url", siteURL, "error", err)
		}
	}()

	if err := session.Navigate(ctx, siteURL); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, siteURL, err)
	}

	pageTitle, err := session.Title(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: title: %w", repository.ErrExtractionFailed, err)
	}
	slog.Debug("Page loaded", "url", siteURL, "title", pageTitle)

	links, err := session.PDFLinks(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: pdf links: %w", repository.ErrExtractionFailed, err)
	}

	records := make([]entity.PdfMetadata, 0, len(links))
	for _, href := range links {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		anchorText, err := session.AnchorText(ctx, href)
		if err != nil {
			slog.Warn("Failed to read anchor text", "url", siteURL, "href", href, "error", err)
			anchorText = ""
		}

		record := uc.fetcher.Fetch(ctx, entity.PdfLink{Href: href, AnchorText: anchorText}, uc.downloadDir)
		record.SiteURL = siteURL
		records = append(records, record)
	}

	// A deadline that fired during the last download still fails the whole site.
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	return pageTitle, records, nil
}

// ErrorType classifies a site failure for metrics and the failed_sites table.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repository.ErrSiteTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrSessionFailed):
		return "session"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, repository.ErrExtractionFailed):
		return "extraction"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
