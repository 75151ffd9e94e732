package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	renders       *prometheus.CounterVec
	renderErrors  *prometheus.CounterVec
	renderSeconds prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavetone_renders_total",
			Help: "Rendered outputs by format.",
		}, []string{"format"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavetone_render_errors_total",
			Help: "Failed render requests by format.",
		}, []string{"format"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavetone_render_duration_seconds",
			Help:    "Time spent rendering.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	m.registry.MustRegister(m.renders, m.renderErrors, m.renderSeconds)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
