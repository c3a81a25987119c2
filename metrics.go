package doc2pdf

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run counters on a private registry so that library users
// can expose them however they like (HTTP handler, textfile collector).
type Metrics struct {
	registry *prometheus.Registry

	attempts *prometheus.CounterVec
	items    *prometheus.CounterVec
	launches *prometheus.CounterVec
	merges   *prometheus.CounterVec
	deletes  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the doc2pdf collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doc2pdf_conversion_attempts_total",
				Help: "Conversion attempts by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doc2pdf_items_total",
				Help: "Worklist items by resolution",
			},
			[]string{"result"}, // converted, accepted, skipped, failed
		),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doc2pdf_application_launches_total",
				Help: "External application launches by backend and result",
			},
			[]string{"backend", "result"},
		),
		merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doc2pdf_merges_total",
				Help: "Merge stage runs by result",
			},
			[]string{"result"},
		),
		deletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doc2pdf_deletes_total",
				Help: "Best-effort file deletions by kind and result",
			},
			[]string{"kind", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "doc2pdf_conversion_duration_seconds",
				Help:    "Time from first attempt to a produced PDF",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"backend"},
		),
	}

	m.registry.MustRegister(m.attempts, m.items, m.launches, m.merges, m.deletes, m.duration)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// The recorders below accept a nil receiver so call sites need no guard.

func (m *Metrics) attempt(backend string, o Outcome) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(backend, o.String()).Inc()
}

func (m *Metrics) item(result string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(result).Inc()
}

func (m *Metrics) launch(backend string, err error) {
	if m == nil {
		return
	}
	m.launches.WithLabelValues(backend, resultLabel(err)).Inc()
}

func (m *Metrics) merge(result string) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(result).Inc()
}

func (m *Metrics) deleted(kind string, d DeleteOutcome) {
	if m == nil {
		return
	}
	m.deletes.WithLabelValues(kind, resultLabel(d.Err)).Inc()
}

func (m *Metrics) converted(backend string, since time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(backend).Observe(time.Since(since).Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
