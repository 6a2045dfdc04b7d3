package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/pdfscraper-service/internal/entity"
)

// PdfMetadataRepoImpl provides a concrete implementation for the PdfMetadataRepository interface using PostgreSQL.
type PdfMetadataRepoImpl struct {
	db *pgxpool.Pool
}

// NewPdfMetadataRepo creates a new instance of PdfMetadataRepoImpl.
func NewPdfMetadataRepo(db *pgxpool.Pool) *PdfMetadataRepoImpl {
	return &PdfMetadataRepoImpl{db: db}
}

const (
	deleteSiteRows    = `DELETE FROM pdf_metadata WHERE site_url = $1;`
	insertPdfMetadata = `
		INSERT INTO pdf_metadata (site_url, position, url, title, file_size, file_path, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW());
	`
)

// Export writes one row per record in a single transaction. The rows of every
// site present in records replace that site's earlier rows, so a re-scrape
// never mixes two runs. The same PDF may appear any number of times.
func (r *PdfMetadataRepoImpl) Export(ctx context.Context, records []entity.PdfMetadata) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, site := range entity.SitesOf(records) {
		batch.Queue(deleteSiteRows, site)
	}
	positions := map[string]int{}
	for _, m := range records {
		batch.Queue(insertPdfMetadata, m.SiteURL, positions[m.SiteURL], m.URL, m.Title, m.FileSize, m.FilePath)
		positions[m.SiteURL]++
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("statement %d: %w", i, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return fmt.Errorf("export pdf metadata: %w", err)
	}
	return nil
}

// FindBySite retrieves the records discovered on siteURL in page order.
func (r *PdfMetadataRepoImpl) FindBySite(ctx context.Context, siteURL string) ([]entity.PdfMetadata, error) {
	query := `
		SELECT url, title, file_size, file_path, site_url
		FROM pdf_metadata
		WHERE site_url = $1
		ORDER BY position, id;
	`
	rows, err := r.db.Query(ctx, query, siteURL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entity.PdfMetadata
	for rows.Next() {
		var m entity.PdfMetadata
		if err := rows.Scan(&m.URL, &m.Title, &m.FileSize, &m.FilePath, &m.SiteURL); err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	return records, rows.Err()
}
