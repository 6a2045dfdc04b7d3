package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SitesInQueue        prometheus.Gauge
	SiteScrapesInFlight prometheus.Gauge
	SiteScrapesTotal    *prometheus.CounterVec // outcome: scraped, failed
	SiteScrapeDuration  *prometheus.HistogramVec // outcome: scraped, failed
	PDFFetchesTotal     *prometheus.CounterVec // status: ok, degraded
	PDFBytesTotal       prometheus.Counter

	initOnce sync.Once
)

// Init registers every collector with the default registry. It is safe to
// call more than once; tests and both binaries call it unconditionally.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		SitesInQueue = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sites_in_queue",
				Help: "Current number of sites waiting in the scrape queue.",
			},
		)

		SiteScrapesInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "site_scrapes_in_flight",
				Help: "Number of site scrapes currently holding a browser session.",
			},
		)

		SiteScrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_scrapes_total",
				Help: "Total number of site scrapes.",
			},
			[]string{"outcome", "error_type"},
		)

		SiteScrapeDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "site_scrape_duration_seconds",
				Help:    "Duration of site scrapes, PDF downloads included.",
				Buckets: []float64{1, 5, 10, 15, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		)

		PDFFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_fetches_total",
				Help: "Total number of PDF downloads attempted.",
			},
			[]string{"status"},
		)

		PDFBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pdf_bytes_downloaded_total",
				Help: "Total number of PDF bytes written to disk.",
			},
		)
	})
}
