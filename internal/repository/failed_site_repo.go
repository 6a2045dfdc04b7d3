package repository

import (
	"context"

	"github.com/user/pdfscraper-service/internal/entity"
)

// FailedSiteRepository records sites whose scrape failed as a whole.
type FailedSiteRepository interface {
	// SaveOrUpdate creates or updates a failure record, incrementing its attempt count.
	SaveOrUpdate(ctx context.Context, failedSite *entity.FailedSite) error
	// FindByURL returns the failure record for url, or nil when there is none.
	FindByURL(ctx context.Context, url string) (*entity.FailedSite, error)
	// Delete removes a failure record, typically after a successful scrape.
	Delete(ctx context.Context, url string) error
}
