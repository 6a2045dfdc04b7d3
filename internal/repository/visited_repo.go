package repository

import (
	"context"
	"time"
)

// VisitedRepository defines the interface for deduplication of submitted sites.
type VisitedRepository interface {
	// MarkVisited marks a site as submitted with a specific expiry time.
	MarkVisited(ctx context.Context, url string, expiry time.Duration) error
	// IsVisited checks if a site has been submitted recently.
	IsVisited(ctx context.Context, url string) (bool, error)
	// RemoveVisited removes a site from the visited set, used for force_scrape.
	RemoveVisited(ctx context.Context, url string) error
}
