package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	CommentsSaved prometheus.Counter
	NearbyQueries prometheus.Counter
	Votes         *prometheus.CounterVec // labels: kind={up,down}
	StoreErrors   prometheus.Counter
	StoreDuration *prometheus.HistogramVec // labels: op={put,get,query,update_vote}
	HTTPRequests  *prometheus.CounterVec   // labels: route, status
	RateLimited   prometheus.Counter

	// Weather (coat advice) metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CommentsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "comments_saved_total",
			Help:      "Total comments written to the table.",
		}),
		NearbyQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "nearby_queries_total",
			Help:      "Total geohash-cell comment queries.",
		}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "votes_total",
			Help:      "Vote increments by kind.",
		}, []string{"kind"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "store_errors_total",
			Help:      "Total comment store failures.",
		}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coatcheck",
			Name:      "store_duration_seconds",
			Help:      "DynamoDB operation duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "weather_requests_total",
			Help:      "Weather API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coatcheck",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coatcheck",
			Name:      "weather_api_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coatcheck",
			Name:      "weather_enabled",
			Help:      "1 when the coat advice endpoint is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.CommentsSaved,
		m.NearbyQueries,
		m.Votes,
		m.StoreErrors,
		m.StoreDuration,
		m.HTTPRequests,
		m.RateLimited,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CommentsSaved:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coatcheck", Name: "comments_saved_total"}),
		NearbyQueries:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coatcheck", Name: "nearby_queries_total"}),
		Votes:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coatcheck", Name: "votes_total"}, []string{"kind"}),
		StoreErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coatcheck", Name: "store_errors_total"}),
		StoreDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "coatcheck", Name: "store_duration_seconds"}, []string{"op"}),
		HTTPRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coatcheck", Name: "http_requests_total"}, []string{"route", "status"}),
		RateLimited:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coatcheck", Name: "rate_limited_total"}),
		WeatherRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coatcheck", Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coatcheck", Name: "weather_cache_total"}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "coatcheck", Name: "weather_api_duration_seconds"}),
		WeatherEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "coatcheck", Name: "weather_enabled"}),
	}
}
