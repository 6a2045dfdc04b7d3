package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten_KeepsSliceOrder(t *testing.T) {
	results := []SiteResult{
		Scraped("a", "A", []PdfMetadata{{URL: "a1"}, {URL: "a2"}}),
		Failed("b", errors.New("boom")),
		Scraped("c", "C", nil),
		Scraped("d", "D", []PdfMetadata{{URL: "d1"}}),
	}

	got := Flatten(results)
	urls := make([]string, 0, len(got))
	for _, m := range got {
		urls = append(urls, m.URL)
	}
	assert.Equal(t, []string{"a1", "a2", "d1"}, urls)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
}

func TestSiteResult_Failed(t *testing.T) {
	assert.True(t, Failed("x", errors.New("down")).Failed())
	assert.False(t, Scraped("x", "", nil).Failed())
}

func TestPdfMetadata_Degraded(t *testing.T) {
	size := int64(10)
	path := "/tmp/x.pdf"
	assert.False(t, PdfMetadata{FileSize: &size, FilePath: &path}.Degraded())
	assert.True(t, PdfMetadata{URL: "u"}.Degraded())
}

func TestSitesOf_FirstSeenOrder(t *testing.T) {
	records := []PdfMetadata{
		{URL: "1", SiteURL: "b"},
		{URL: "2", SiteURL: "a"},
		{URL: "3", SiteURL: "b"},
	}
	assert.Equal(t, []string{"b", "a"}, SitesOf(records))
	assert.Empty(t, SitesOf(nil))
}
