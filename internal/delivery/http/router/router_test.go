package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pdfscraper-service/internal/delivery/http/handler"
	"github.com/user/pdfscraper-service/internal/delivery/http/response"
	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/metrics"
	"github.com/user/pdfscraper-service/pkg/utils"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeSiteManager struct {
	submitted []string
	recent    map[string]bool
	failOn    string
	statuses  map[string]*entity.SiteStatus
	records   map[string][]entity.PdfMetadata
	err       error
}

func (f *fakeSiteManager) Submit(_ context.Context, url string, force bool) (string, error) {
	if url == f.failOn {
		return "", errors.New("redis down")
	}
	if f.recent[url] && !force {
		return utils.HashURL(url), usecase.ErrSiteRecentlyScraped
	}
	f.submitted = append(f.submitted, url)
	return utils.HashURL(url), nil
}

func (f *fakeSiteManager) GetStatus(_ context.Context, url string) (*entity.SiteStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.statuses[url]; ok {
		return s, nil
	}
	return &entity.SiteStatus{URL: url, CurrentStatus: entity.StatusNotFound}, nil
}

func (f *fakeSiteManager) ListPDFs(_ context.Context, url string) ([]entity.PdfMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[url], nil
}

func serve(t *testing.T, sm usecase.SiteManager, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	New(handler.NewHandler(sm)).ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeSiteManager{}, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitScrape_ReportsPerSite(t *testing.T) {
	sm := &fakeSiteManager{
		recent: map[string]bool{"https://old.example": true},
		failOn: "https://broken.example",
	}
	body := `{"sites": ["https://new.example", "https://old.example", "not a url", "https://broken.example"]}`

	rec := serve(t, sm, http.MethodPost, "/api/scrape", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp response.SubmitScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	require.Len(t, resp.Sites, 4)

	assert.Equal(t, "queued", resp.Sites[0].Status)
	assert.Equal(t, utils.HashURL("https://new.example"), resp.Sites[0].SiteID)
	assert.Equal(t, "recently_scraped", resp.Sites[1].Status)
	assert.Equal(t, "invalid_url", resp.Sites[2].Status)
	assert.Equal(t, "error", resp.Sites[3].Status)
	assert.Equal(t, []string{"https://new.example"}, sm.submitted)
}

func TestSubmitScrape_ForceBypassesDedup(t *testing.T) {
	sm := &fakeSiteManager{recent: map[string]bool{"https://old.example": true}}
	rec := serve(t, sm, http.MethodPost, "/api/scrape", `{"sites": ["https://old.example"], "force_scrape": true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"https://old.example"}, sm.submitted)
}

func TestSubmitScrape_BadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"malformed": `{"sites": [`,
		"empty":     `{"sites": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(t, &fakeSiteManager{}, http.MethodPost, "/api/scrape", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitScrape_WrongMethod(t *testing.T) {
	rec := serve(t, &fakeSiteManager{}, http.MethodGet, "/api/scrape", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetStatus(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sm := &fakeSiteManager{statuses: map[string]*entity.SiteStatus{
		"https://done.example": {URL: "https://done.example", CurrentStatus: entity.StatusCompleted, PDFCount: 3},
		"https://bad.example":  {URL: "https://bad.example", CurrentStatus: entity.StatusFailed, LastScrapeTimestamp: &when, FailureReason: "timeout"},
	}}

	rec := serve(t, sm, http.MethodGet, "/api/status?url=https://done.example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp response.SiteStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusCompleted, resp.CurrentStatus)
	assert.Equal(t, 3, resp.PDFCount)

	rec = serve(t, sm, http.MethodGet, "/api/status?url=https://bad.example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = response.SiteStatusResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "timeout", resp.FailureReason)
	require.NotNil(t, resp.LastScrapeTimestamp)
	assert.True(t, when.Equal(*resp.LastScrapeTimestamp))

	assert.Equal(t, http.StatusNotFound, serve(t, sm, http.MethodGet, "/api/status?url=https://unknown.example", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, sm, http.MethodGet, "/api/status", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, sm, http.MethodGet, "/api/status?url=ftp://x", "").Code)
}

func TestGetStatus_InternalError(t *testing.T) {
	rec := serve(t, &fakeSiteManager{err: errors.New("db down")}, http.MethodGet, "/api/status?url=https://a.example", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListPDFs(t *testing.T) {
	size := int64(5)
	path := "pdf_files/x.pdf"
	sm := &fakeSiteManager{records: map[string][]entity.PdfMetadata{
		"https://a.example": {
			{URL: "https://a.example/x.pdf", Title: "X", FileSize: &size, FilePath: &path, SiteURL: "https://a.example"},
			{URL: "https://a.example/y.pdf", Title: "Y", SiteURL: "https://a.example"},
		},
	}}

	rec := serve(t, sm, http.MethodGet, "/api/pdfs?site=https://a.example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp response.PDFListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Nil(t, resp.PDFs[1].FileSize)

	rec = serve(t, sm, http.MethodGet, "/api/pdfs?site=https://empty.example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pdfs":[]`)

	assert.Equal(t, http.StatusBadRequest, serve(t, sm, http.MethodGet, "/api/pdfs", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	serve(t, &fakeSiteManager{}, http.MethodGet, "/api/health", "")
	rec := serve(t, &fakeSiteManager{}, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"}`)
}
