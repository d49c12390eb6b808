package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tasktrek"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Weather workflow metrics.
	ForecastRequests     *prometheus.CounterVec // labels: kind={place,coordinates}, outcome={success,error}
	ForecastDuration     prometheus.Histogram
	ForecastSuperseded   prometheus.Counter
	ForecastDeduplicated prometheus.Counter
	LocationResolutions  *prometheus.CounterVec // labels: source={position,fallback}

	// Visitor-facing state changes.
	SignInAttempts *prometheus.CounterVec // labels: outcome={success,invalid,duplicate,error}
	ThemeChanges   *prometheus.CounterVec // labels: source={explicit,system}
	ActiveVisitors prometheus.Gauge

	// Geocoding metrics.
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Activity sink metrics.
	ActivityPublished     prometheus.Counter
	ActivityDropped       prometheus.Counter
	ActivityPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := build()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return build()
}

func build() *Metrics {
	return &Metrics{
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast fetches by query kind and outcome.",
		}, []string{"kind", "outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Duration of a forecast fetch including place labelling.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ForecastSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_superseded_total",
			Help:      "Forecast completions dropped because a newer action started.",
		}),
		ForecastDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_deduplicated_total",
			Help:      "Actions ignored because the same query was already in flight.",
		}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_resolutions_total",
			Help:      "Location resolutions by source.",
		}, []string{"source"}),
		SignInAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_attempts_total",
			Help:      "Sign-in submissions by outcome.",
		}, []string{"outcome"}),
		ThemeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_changes_total",
			Help:      "Applied theme changes by source.",
		}, []string{"source"}),
		ActiveVisitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_visitors",
			Help:      "Visitors with live in-memory state.",
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ActivityPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_published_total",
			Help:      "Activity events delivered to the sink.",
		}),
		ActivityDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_dropped_total",
			Help:      "Activity events dropped because the buffer was full.",
		}),
		ActivityPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_publish_errors_total",
			Help:      "Failed activity batch deliveries.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ForecastRequests,
		m.ForecastDuration,
		m.ForecastSuperseded,
		m.ForecastDeduplicated,
		m.LocationResolutions,
		m.SignInAttempts,
		m.ThemeChanges,
		m.ActiveVisitors,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.ActivityPublished,
		m.ActivityDropped,
		m.ActivityPublishErrors,
	}
}
