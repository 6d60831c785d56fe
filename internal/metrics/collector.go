package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the viewer engine.
type Metrics struct {
	sessionsCreated   prometheus.Counter
	meshesClassified  *prometheus.CounterVec
	meshesSkipped     prometheus.Counter
	priceComputations prometheus.Counter
	materialApplies   *prometheus.CounterVec
	saves             *prometheus.CounterVec
	sceneLoadLatency  prometheus.Histogram
	classifyLatency   prometheus.Histogram
	activeSessions    prometheus.Gauge
}

// NewMetrics creates and registers all viewer metrics
func NewMetrics() *Metrics {
	return &Metrics{
		sessionsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "viewer_sessions_created_total",
				Help: "Total number of viewer sessions created",
			},
		),
		meshesClassified: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_meshes_classified_total",
				Help: "Total number of meshes classified per surface category",
			},
			[]string{"category"},
		),
		meshesSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "viewer_meshes_skipped_total",
				Help: "Total number of meshes skipped for missing bounding boxes",
			},
		),
		priceComputations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "viewer_price_computations_total",
				Help: "Total number of price breakdown computations",
			},
		),
		materialApplies: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_material_applies_total",
				Help: "Total number of apply-material operations per outcome",
			},
			[]string{"outcome"},
		),
		saves: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_selection_saves_total",
				Help: "Total number of selection save attempts per outcome",
			},
			[]string{"outcome"},
		),
		sceneLoadLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viewer_scene_load_latency_ms",
				Help:    "Latency of scene index loads from storage in milliseconds",
				Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		classifyLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viewer_classify_latency_ms",
				Help:    "Latency of scene classification passes in milliseconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		activeSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_active_sessions",
				Help: "Number of live viewer sessions",
			},
		),
	}
}

// IncrementSessionsCreated increments the session creation counter
func (m *Metrics) IncrementSessionsCreated() {
	m.sessionsCreated.Inc()
}

// RecordClassification records per-category mesh counts and skipped meshes
func (m *Metrics) RecordClassification(counts map[string]int, skipped int) {
	for category, count := range counts {
		m.meshesClassified.WithLabelValues(category).Add(float64(count))
	}
	m.meshesSkipped.Add(float64(skipped))
}

// IncrementPriceComputations increments the breakdown computation counter
func (m *Metrics) IncrementPriceComputations() {
	m.priceComputations.Inc()
}

// IncrementMaterialApplies increments the apply-material counter
func (m *Metrics) IncrementMaterialApplies(outcome string) {
	m.materialApplies.WithLabelValues(outcome).Inc()
}

// IncrementSaves increments the save counter
func (m *Metrics) IncrementSaves(outcome string) {
	m.saves.WithLabelValues(outcome).Inc()
}

// RecordSceneLoadLatency records the latency of a scene load
func (m *Metrics) RecordSceneLoadLatency(milliseconds int64) {
	m.sceneLoadLatency.Observe(float64(milliseconds))
}

// RecordClassifyLatency records the latency of a classification pass
func (m *Metrics) RecordClassifyLatency(milliseconds float64) {
	m.classifyLatency.Observe(milliseconds)
}

// SetActiveSessions sets the live session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}
