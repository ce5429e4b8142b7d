package collector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the page collector.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesFetchedTotal prometheus.Counter
	ProductsTotal     prometheus.Counter
	FetchErrorsTotal  *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricetracker_pages_fetched_total",
			Help: "Total listing pages fetched successfully.",
		},
	)
	products := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricetracker_products_collected_total",
			Help: "Total products extracted from listing pages.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricetracker_fetch_errors_total",
			Help: "Total listing-page fetch errors by category.",
		},
		[]string{"category"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricetracker_request_duration_seconds",
			Help:    "HTTP request latency for listing-page requests.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, products, fetchErrors, requestDuration)

	return &Metrics{
		Registry:          registry,
		PagesFetchedTotal: pages,
		ProductsTotal:     products,
		FetchErrorsTotal:  fetchErrors,
		RequestDuration:   requestDuration,
	}
}

// IncPages increments the fetched-pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.Inc()
}

// IncProducts increments the collected-products counter.
func (m *Metrics) IncProducts() {
	if m == nil {
		return
	}
	m.ProductsTotal.Inc()
}

// IncFetchError increments the fetch-errors counter for a category label.
func (m *Metrics) IncFetchError(category string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(category).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}
