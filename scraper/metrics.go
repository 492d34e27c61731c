package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry            *prometheus.Registry
	PagesTotal          *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	ProductsTotal       prometheus.Counter
	ErrorsTotal         *prometheus.CounterVec
	ConsecutiveFailures prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Total SKU pages processed, labelled by classification outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "HTTP fetch latency per SKU page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	products := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_extracted_total",
			Help: "Total product records appended to the corpus.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total transport errors by type.",
		},
		[]string{"error_type"},
	)
	consecutive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_consecutive_failures",
			Help: "Current consecutive-failure count feeding the circuit breaker.",
		},
	)

	registry.MustRegister(pages, fetchDuration, products, errorsTotal, consecutive)

	return &Metrics{
		Registry:            registry,
		PagesTotal:          pages,
		FetchDuration:       fetchDuration,
		ProductsTotal:       products,
		ErrorsTotal:         errorsTotal,
		ConsecutiveFailures: consecutive,
	}
}

// IncPage increments the page counter for a classification outcome.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetchDuration records one fetch latency sample.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncProducts increments the extracted products counter.
func (m *Metrics) IncProducts() {
	if m == nil {
		return
	}
	m.ProductsTotal.Inc()
}

// IncError increments the transport error counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetConsecutiveFailures publishes the breaker's current level.
func (m *Metrics) SetConsecutiveFailures(n int) {
	if m == nil {
		return
	}
	m.ConsecutiveFailures.Set(float64(n))
}
