package request

type SubmitScrapeRequest struct {
	Sites       []string `json:"sites"`
	ForceScrape bool     `json:"force_scrape"`
}
