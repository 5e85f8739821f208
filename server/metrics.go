package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promptfeedback"

type metrics struct {
	// Labels: source (heuristic, llm, fallback), cached
	evaluations *prometheus.CounterVec
	// Labels: source
	scores *prometheus.HistogramVec
	// Labels: route, status
	latency *prometheus.HistogramVec
	// Labels: code
	errors       *prometheus.CounterVec
	historyItems prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total prompt evaluations by strategy",
		}, []string{"source", "cached"}),
		scores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_score",
			Help:      "Distribution of prompt quality scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 90, 100},
		}, []string{"source"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total request errors by code",
		}, []string{"code"}),
		historyItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_items",
			Help:      "Evaluations currently held in the session history",
		}),
	}
}
