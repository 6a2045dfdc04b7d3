package entity

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusNotFound  = "not_found"
)

type SiteStatus struct {
	URL                 string
	CurrentStatus       string
	PDFCount            int
	LastScrapeTimestamp *time.Time
	FailureReason       string
}
