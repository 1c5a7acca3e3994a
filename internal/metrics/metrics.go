// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signature_studio"

type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	artifacts      *prometheus.CounterVec
	mails          *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	templateFetch  *prometheus.CounterVec
	signIns        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_artifacts_total",
			Help:      "Rendered signature artifacts by format (docx, html, png, preview).",
		}, []string{"format"}),
		mails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mails_sent_total",
			Help:      "Signature mails by result.",
		}, []string{"result"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream failures by provider and kind.",
		}, []string{"provider", "kind"}),
		templateFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_fetch_total",
			Help:      "Template fetches by source (blob or fallback).",
		}, []string{"source"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_ins_total",
			Help:      "Completed identity callbacks by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestSeconds, m.artifacts, m.mails, m.upstreamErrors, m.templateFetch, m.signIns,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, code int, seconds float64) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestSeconds.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) Artifact(format string) {
	m.artifacts.WithLabelValues(format).Inc()
}

func (m *Metrics) Mail(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.mails.WithLabelValues(result).Inc()
}

func (m *Metrics) UpstreamError(provider, kind string) {
	m.upstreamErrors.WithLabelValues(provider, kind).Inc()
}

func (m *Metrics) TemplateFetch(source string) {
	m.templateFetch.WithLabelValues(source).Inc()
}

func (m *Metrics) SignIn(result string) {
	m.signIns.WithLabelValues(result).Inc()
}
