package response

import (
	"time"

	"github.com/user/pdfscraper-service/internal/entity"
)

// SiteSubmission reports what happened to one site of a scrape request.
type SiteSubmission struct {
	URL    string `json:"url"`
	SiteID string `json:"site_id,omitempty"`
	Status string `json:"status"` // "queued", "recently_scraped", "invalid_url", "error"
	Error  string `json:"error,omitempty"`
}

type SubmitScrapeResponse struct {
	JobID   string           `json:"job_id"`
	Message string           `json:"message"`
	Sites   []SiteSubmission `json:"sites"`
}

// SiteStatusResponse is a DTO for entity.SiteStatus.
type SiteStatusResponse struct {
	URL                 string     `json:"url"`
	CurrentStatus       string     `json:"current_status"` // "pending", "completed", "failed"
	PDFCount            int        `json:"pdf_count"`
	LastScrapeTimestamp *time.Time `json:"last_scrape_timestamp,omitempty"`
	FailureReason       string     `json:"failure_reason,omitempty"`
}

type PDFListResponse struct {
	Site  string               `json:"site"`
	Count int                  `json:"count"`
	PDFs  []entity.PdfMetadata `json:"pdfs"`
}
