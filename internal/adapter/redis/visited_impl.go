package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/pdfscraper-service/pkg/utils"
)

const submittedSitePrefix = "pdfscraper:submitted:"

// VisitedRepoImpl remembers recently submitted sites with expiring keys.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

func (r *VisitedRepoImpl) key(url string) string {
	return submittedSitePrefix + utils.HashURL(url)
}

func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, url string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.key(url), "1", expiry).Err()
}

func (r *VisitedRepoImpl) IsVisited(ctx context.Context, url string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(url)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RemoveVisited forgets a site, used for force_scrape.
func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.key(url)).Err()
}
