package app

import (
	"context"

	"github.com/user/pdfscraper-service/internal/adapter/excel"
	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/config"
)

// StoreExporter connects to the database only when asked to export, so an
// unreachable database surfaces as an export error once scraping is over.
// It also brings the failed_sites table in step with the run's results.
type StoreExporter struct {
	cfg     config.DatabaseConfig
	results []entity.SiteResult
}

func NewStoreExporter(cfg config.DatabaseConfig, results []entity.SiteResult) *StoreExporter {
	return &StoreExporter{cfg: cfg, results: results}
}

func (e *StoreExporter) Export(ctx context.Context, records []entity.PdfMetadata) error {
	store, err := OpenStore(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	record := usecase.NewFailedSiteRecorder(store.Failed)
	for _, r := range e.results {
		record(ctx, r)
	}
	return store.Metadata.Export(ctx, records)
}

// Persist writes the records of a batch run to the spreadsheet and, when a
// database is configured, to the database. Every target is attempted.
func Persist(ctx context.Context, cfg *config.Config, results []entity.SiteResult) error {
	exporters := []usecase.NamedExporter{
		{Name: "xlsx", Exporter: excel.NewExporter(cfg.OutputXLSX)},
	}
	if cfg.Database.Driver != "" {
		exporters = append(exporters, usecase.NamedExporter{
			Name:     cfg.Database.Driver,
			Exporter: NewStoreExporter(cfg.Database, results),
		})
	}
	return usecase.NewMultiExporter(exporters...).Export(ctx, entity.Flatten(results))
}
