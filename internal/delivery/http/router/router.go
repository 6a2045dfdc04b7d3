package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/pdfscraper-service/internal/delivery/http/handler"
	"github.com/user/pdfscraper-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/scrape", h.HandleSubmitScrape)
		r.Get("/status", h.HandleGetSiteStatus)
		r.Get("/pdfs", h.HandleListPDFs)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
