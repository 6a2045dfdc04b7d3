package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/pdfscraper-service/internal/entity"
)

// Store keeps PDF metadata and failed sites in a local SQLite file. It
// serves both PdfMetadataRepository and FailedSiteRepository.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath and creates the tables if needed.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// go-sqlite3 serialises writers; one connection avoids SQLITE_BUSY under the worker pool.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pdf_metadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_url TEXT NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		file_size INTEGER,
		file_path TEXT,
		scraped_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS pdf_metadata_site_url_idx ON pdf_metadata (site_url, position);

	CREATE TABLE IF NOT EXISTS failed_sites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		failure_reason TEXT NOT NULL,
		error_type TEXT NOT NULL,
		last_attempt_timestamp TEXT NOT NULL,
		attempt_count INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Export writes one row per record in one transaction. Rows of every site
// present in records replace that site's earlier rows.
func (s *Store) Export(ctx context.Context, records []entity.PdfMetadata) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, site := range entity.SitesOf(records) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pdf_metadata WHERE site_url = ?`, site); err != nil {
			return fmt.Errorf("clear rows of %s: %w", site, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pdf_metadata (site_url, position, url, title, file_size, file_path, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	positions := map[string]int{}
	for _, m := range records {
		pos := positions[m.SiteURL]
		positions[m.SiteURL]++
		if _, err := stmt.ExecContext(ctx, m.SiteURL, pos, m.URL, m.Title, m.FileSize, m.FilePath, now); err != nil {
			return fmt.Errorf("insert %s: %w", m.URL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) FindBySite(ctx context.Context, siteURL string) ([]entity.PdfMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, file_size, file_path, site_url
		FROM pdf_metadata
		WHERE site_url = ?
		ORDER BY position, id
	`, siteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query pdf metadata: %w", err)
	}
	defer rows.Close()

	var records []entity.PdfMetadata
	for rows.Next() {
		var (
			m    entity.PdfMetadata
			size sql.NullInt64
			path sql.NullString
		)
		if err := rows.Scan(&m.URL, &m.Title, &size, &path, &m.SiteURL); err != nil {
			return nil, fmt.Errorf("failed to scan pdf metadata: %w", err)
		}
		if size.Valid {
			m.FileSize = &size.Int64
		}
		if path.Valid {
			m.FilePath = &path.String
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

func (s *Store) SaveOrUpdate(ctx context.Context, fs *entity.FailedSite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failed_sites (url, failure_reason, error_type, last_attempt_timestamp, attempt_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET
			failure_reason = excluded.failure_reason,
			error_type = excluded.error_type,
			last_attempt_timestamp = excluded.last_attempt_timestamp,
			attempt_count = failed_sites.attempt_count + 1
	`, fs.URL, fs.FailureReason, fs.ErrorType, fs.LastAttemptTimestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save failed site: %w", err)
	}
	return nil
}

func (s *Store) FindByURL(ctx context.Context, url string) (*entity.FailedSite, error) {
	var (
		fs      entity.FailedSite
		attempt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, failure_reason, error_type, last_attempt_timestamp, attempt_count
		FROM failed_sites
		WHERE url = ?
	`, url).Scan(&fs.ID, &fs.URL, &fs.FailureReason, &fs.ErrorType, &attempt, &fs.AttemptCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed site: %w", err)
	}
	if fs.LastAttemptTimestamp, err = time.Parse(time.RFC3339Nano, attempt); err != nil {
		return nil, fmt.Errorf("failed to parse last_attempt_timestamp: %w", err)
	}
	return &fs, nil
}

func (s *Store) Delete(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM failed_sites WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to delete failed site: %w", err)
	}
	return nil
}
