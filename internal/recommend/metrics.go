package recommend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricRecommendations        = "recommendations_total"
	MetricRecommendationDuration = "recommendation_duration_seconds"
	MetricRecommendationFallback = "recommendation_fallbacks_total"
	MetricCatalogRecords         = "catalog_records"
)

// Metrics contains Prometheus metrics for the recommendation engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	recommendations *prometheus.CounterVec
	duration        prometheus.Histogram
	fallbacks       prometheus.Counter
	catalogRecords  prometheus.Gauge
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRecommendations,
				Help: "Total number of recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRecommendationDuration,
				Help:    "Time spent scoring a recommendation request in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRecommendationFallback,
				Help: "Total number of recommendations answered with the first catalog record",
			},
		),
		catalogRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricCatalogRecords,
				Help: "Number of assessments in the loaded catalog",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.recommendations,
		m.duration,
		m.fallbacks,
		m.catalogRecords,
	}
}

// SetCatalogRecords records the catalog size.
func (m *Metrics) SetCatalogRecords(n int) {
	if m == nil {
		return
	}
	m.catalogRecords.Set(float64(n))
}

func (m *Metrics) observe(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "fault"
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) incFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
