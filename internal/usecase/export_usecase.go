package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/repository"
)

// NamedExporter labels an exporter for logs and error messages.
type NamedExporter struct {
	Name     string
	Exporter repository.MetadataExporter
}

// MultiExporter hands the same records to every exporter. Every exporter runs
// even if an earlier one fails; the errors are joined.
type MultiExporter struct {
	exporters []NamedExporter
}

func NewMultiExporter(exporters ...NamedExporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

func (m *MultiExporter) Export(ctx context.Context, records []entity.PdfMetadata) error {
	var errs []error
	for _, e := range m.exporters {
		if err := e.Exporter.Export(ctx, records); err != nil {
			slog.Error("Export failed", "exporter", e.Name, "records", len(records), "error", err)
			errs = append(errs, fmt.Errorf("%s export: %w", e.Name, err))
			continue
		}
		slog.Info("Export complete", "exporter", e.Name, "records", len(records))
	}
	return errors.Join(errs...)
}

// NewFailedSiteRecorder returns a SiteObserver that keeps the failed_sites
// table in step with scrape outcomes. Store errors are logged, never returned.
func NewFailedSiteRecorder(repo repository.FailedSiteRepository) SiteObserver {
	return func(ctx context.Context, result entity.SiteResult) {
		if !result.Failed() {
			if err := repo.Delete(ctx, result.SiteURL); err != nil {
				slog.Warn("Failed to clear failed site record", "url", result.SiteURL, "error", err)
			}
			return
		}

		failed := &entity.FailedSite{
			URL:                  result.SiteURL,
			FailureReason:        result.Reason.Error(),
			ErrorType:            ErrorType(result.Reason),
			LastAttemptTimestamp: time.Now(),
		}
		if err := repo.SaveOrUpdate(ctx, failed); err != nil {
			slog.Error("Failed to record failed site", "url", result.SiteURL, "error", err)
		}
	}
}
