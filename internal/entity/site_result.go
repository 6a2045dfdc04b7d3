package entity

import "time"

// SiteOutcome tags a SiteResult.
type SiteOutcome string

const (
	SiteScraped SiteOutcome = "scraped"
	SiteFailed  SiteOutcome = "failed"
)

// SiteResult is the outcome of scraping one site. A failed site carries the
// reason and never any records; a scraped site may still have zero records.
type SiteResult struct {
	SiteURL   string
	Outcome   SiteOutcome
	PageTitle string
	Records   []PdfMetadata
	Reason    error
	Duration  time.Duration
}

// Scraped builds a successful result.
func Scraped(siteURL, pageTitle string, records []PdfMetadata) SiteResult {
	return SiteResult{SiteURL: siteURL, Outcome: SiteScraped, PageTitle: pageTitle, Records: records}
}

// Failed builds a site-level failure.
func Failed(siteURL string, reason error) SiteResult {
	return SiteResult{SiteURL: siteURL, Outcome: SiteFailed, Reason: reason}
}

func (r SiteResult) Failed() bool { return r.Outcome == SiteFailed }

// Flatten concatenates the records of results in slice order.
func Flatten(results []SiteResult) []PdfMetadata {
	n := 0
	for _, r := range results {
		n += len(r.Records)
	}
	out := make([]PdfMetadata, 0, n)
	for _, r := range results {
		out = append(out, r.Records...)
	}
	return out
}
