// Package metrics holds the Prometheus collectors for the question service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "virtualta"

// Metrics owns a private registry. A nil *Metrics is a no-op recorder.
type Metrics struct {
	registry  *prometheus.Registry
	questions *prometheus.CounterVec
	ruleHits  *prometheus.CounterVec
	duration  prometheus.Histogram
	images    *prometheus.CounterVec
	documents *prometheus.GaugeVec
	reloads   prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions answered, by outcome (rule, scored, unknown).",
		}, []string{"outcome"}),
		ruleHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_hits_total",
			Help:      "Questions answered by each rule.",
		}, []string{"rule"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "Time spent producing an answer.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_attachments_total",
			Help:      "Image attachments received, by result (ok, invalid).",
		}, []string{"result"}),
		documents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Documents in the loaded corpus, by type.",
		}, []string{"type"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_reloads_total",
			Help:      "Corpus snapshots swapped in after start-up.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.questions, m.ruleHits, m.duration, m.images, m.documents, m.reloads,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnswer records one answered question.
func (m *Metrics) ObserveAnswer(outcome, ruleID string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.questions.WithLabelValues(outcome).Inc()
	if ruleID != "" {
		m.ruleHits.WithLabelValues(ruleID).Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}

// ObserveImage records an attachment inspection result.
func (m *Metrics) ObserveImage(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "invalid"
	}
	m.images.WithLabelValues(result).Inc()
}

// SetDocuments publishes per-type corpus sizes.
func (m *Metrics) SetDocuments(byType map[string]int) {
	if m == nil {
		return
	}
	for t, n := range byType {
		m.documents.WithLabelValues(t).Set(float64(n))
	}
}

// IncReloads counts a corpus swap.
func (m *Metrics) IncReloads() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}
