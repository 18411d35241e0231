package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Catalog file loads by result (ok, cached, not_found, format_error)",
		},
		[]string{"result"},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Number of products in the most recently loaded catalog",
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_recommendations_total",
			Help: "Recommendation lookups by outcome",
		},
		[]string{"status"},
	)

	MissingImages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_missing_images_total",
			Help: "Product cards rendered without an image file",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// RecordCatalogLoad counts a load attempt and tracks the catalog size on success
func RecordCatalogLoad(result string, products int) {
	CatalogLoads.WithLabelValues(result).Inc()
	if result == "ok" || result == "cached" {
		CatalogProducts.Set(float64(products))
	}
}

// RecordHTTPRequest records one completed request
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
