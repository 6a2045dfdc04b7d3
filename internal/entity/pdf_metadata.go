package entity

// PdfLink is a hyperlink discovered on a site page.
type PdfLink struct {
	Href       string
	AnchorText string
}

// PdfMetadata mirrors the `pdf_metadata` table and the spreadsheet columns.
// FileSize and FilePath are nil only for a degraded record, i.e. a link
// whose download failed.
type PdfMetadata struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	FileSize *int64  `json:"file_size"`
	FilePath *string `json:"file_path"`
	SiteURL  string  `json:"site_url"`
}

// Degraded reports whether the download behind this record failed.
func (m PdfMetadata) Degraded() bool {
	return m.FileSize == nil || m.FilePath == nil
}

// SitesOf returns the distinct SiteURL values of records in first-seen order.
func SitesOf(records []PdfMetadata) []string {
	seen := make(map[string]bool)
	var sites []string
	for _, m := range records {
		if !seen[m.SiteURL] {
			seen[m.SiteURL] = true
			sites = append(sites, m.SiteURL)
		}
	}
	return sites
}
