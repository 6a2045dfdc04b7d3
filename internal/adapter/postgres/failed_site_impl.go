package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/pdfscraper-service/internal/entity"
)

// FailedSiteRepoImpl provides a concrete implementation for the FailedSiteRepository interface using PostgreSQL.
type FailedSiteRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedSiteRepo creates a new instance of FailedSiteRepoImpl.
func NewFailedSiteRepo(db *pgxpool.Pool) *FailedSiteRepoImpl {
	return &FailedSiteRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed site.
// It increments attempt_count on conflict.
func (r *FailedSiteRepoImpl) SaveOrUpdate(ctx context.Context, failedSite *entity.FailedSite) error {
	query := `
		INSERT INTO failed_sites (url, failure_reason, error_type, last_attempt_timestamp, attempt_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (url) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			error_type = EXCLUDED.error_type,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			attempt_count = failed_sites.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		failedSite.URL,
		failedSite.FailureReason,
		failedSite.ErrorType,
		failedSite.LastAttemptTimestamp,
	)
	return err
}

// FindByURL returns nil, nil when the site has no failure record.
func (r *FailedSiteRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FailedSite, error) {
	query := `
		SELECT id, url, failure_reason, error_type, last_attempt_timestamp, attempt_count
		FROM failed_sites
		WHERE url = $1;
	`
	var fs entity.FailedSite
	err := r.db.QueryRow(ctx, query, url).Scan(
		&fs.ID,
		&fs.URL,
		&fs.FailureReason,
		&fs.ErrorType,
		&fs.LastAttemptTimestamp,
		&fs.AttemptCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

// Delete removes a failed site record, typically after a successful scrape.
func (r *FailedSiteRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM failed_sites WHERE url = $1;`
	_, err := r.db.Exec(ctx, query, url)
	return err
}
