package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS pdf_metadata (
	id          BIGSERIAL PRIMARY KEY,
	site_url    TEXT NOT NULL,
	position    INTEGER NOT NULL,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL,
	file_size   BIGINT,
	file_path   TEXT,
	scraped_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS pdf_metadata_site_url_idx ON pdf_metadata (site_url, position);
CREATE INDEX IF NOT EXISTS pdf_metadata_url_idx ON pdf_metadata (url);

CREATE TABLE IF NOT EXISTS failed_sites (
	id                     BIGSERIAL PRIMARY KEY,
	url                    TEXT NOT NULL UNIQUE,
	failure_reason         TEXT NOT NULL,
	error_type             TEXT NOT NULL,
	last_attempt_timestamp TIMESTAMPTZ NOT NULL,
	attempt_count          INTEGER NOT NULL DEFAULT 1
);
`

// EnsureSchema creates the tables used by this package if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
