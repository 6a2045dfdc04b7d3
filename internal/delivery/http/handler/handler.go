package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/user/pdfscraper-service/internal/delivery/http/request"
	"github.com/user/pdfscraper-service/internal/delivery/http/response"
	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/usecase"
	"github.com/user/pdfscraper-service/pkg/utils"
)

// maxSitesPerRequest bounds how many sites one POST may enqueue.
const maxSitesPerRequest = 1000

type Handler struct {
	siteManager usecase.SiteManager
}

func NewHandler(siteManager usecase.SiteManager) *Handler {
	return &Handler{
		siteManager: siteManager,
	}
}

// HandleSubmitScrape queues every valid site. Per-site problems are reported
// in the body; the request as a whole is accepted.
func (h *Handler) HandleSubmitScrape(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Sites) == 0 {
		h.writeJSONError(w, "At least one site is required", http.StatusBadRequest)
		return
	}
	if len(req.Sites) > maxSitesPerRequest {
		h.writeJSONError(w, "Too many sites in one request", http.StatusRequestEntityTooLarge)
		return
	}

	jobID := uuid.NewString()
	resp := response.SubmitScrapeResponse{
		JobID: jobID,
		Sites: make([]response.SiteSubmission, 0, len(req.Sites)),
	}

	queued := 0
	for _, site := range req.Sites {
		sub := response.SiteSubmission{URL: site}
		if !utils.IsAbsoluteHTTPURL(site) {
			sub.Status = "invalid_url"
			resp.Sites = append(resp.Sites, sub)
			continue
		}

		siteID, err := h.siteManager.Submit(r.Context(), site, req.ForceScrape)
		sub.SiteID = siteID
		switch {
		case err == nil:
			sub.Status = "queued"
			queued++
		case errors.Is(err, usecase.ErrSiteRecentlyScraped):
			sub.Status = "recently_scraped"
			sub.Error = err.Error()
		default:
			slog.Error("Failed to submit site", "job_id", jobID, "url", site, "error", err)
			sub.Status = "error"
			sub.Error = "internal error"
		}
		resp.Sites = append(resp.Sites, sub)
	}

	if queued == 0 {
		resp.Message = "No sites were queued"
	} else {
		resp.Message = "Sites submitted for scraping"
	}
	slog.Info("Scrape job submitted", "job_id", jobID, "sites", len(req.Sites), "queued", queued)
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) HandleGetSiteStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}
	if !utils.IsAbsoluteHTTPURL(rawURL) {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return
	}

	status, err := h.siteManager.GetStatus(r.Context(), rawURL)
	if err != nil {
		slog.Error("Failed to get site status", "url", rawURL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if status.CurrentStatus == entity.StatusNotFound {
		h.writeJSONError(w, "Scrape status not found for the given URL", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.SiteStatusResponse{
		URL:                 status.URL,
		CurrentStatus:       status.CurrentStatus,
		PDFCount:            status.PDFCount,
		LastScrapeTimestamp: status.LastScrapeTimestamp,
		FailureReason:       status.FailureReason,
	})
}

func (h *Handler) HandleListPDFs(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("site")
	if !utils.IsAbsoluteHTTPURL(site) {
		h.writeJSONError(w, "A valid site query parameter is required", http.StatusBadRequest)
		return
	}

	records, err := h.siteManager.ListPDFs(r.Context(), site)
	if err != nil {
		slog.Error("Failed to list PDFs", "site", site, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []entity.PdfMetadata{}
	}

	h.writeJSON(w, http.StatusOK, response.PDFListResponse{Site: site, Count: len(records), PDFs: records})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
