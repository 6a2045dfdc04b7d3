package repository

import (
	"context"

	"github.com/user/pdfscraper-service/internal/entity"
)

// MetadataExporter persists a batch of PDF metadata records.
type MetadataExporter interface {
	Export(ctx context.Context, records []entity.PdfMetadata) error
}

// PdfMetadataRepository is a relational store that can also be queried.
type PdfMetadataRepository interface {
	MetadataExporter
	// FindBySite returns the records discovered on siteURL, ordered by URL.
	FindBySite(ctx context.Context, siteURL string) ([]entity.PdfMetadata, error)
}
