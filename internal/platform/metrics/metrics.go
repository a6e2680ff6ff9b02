// Package metrics holds the portal's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry plus the collectors the portal records into.
// A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	requests        *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	draftRejections *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Portal HTTP requests by method, route pattern and status code.",
			},
			[]string{"method", "route", "code"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_api_request_duration_seconds",
				Help:    "Latency of insurance API calls by method, route and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
		draftRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_draft_rejections_total",
				Help: "Form inputs rejected by the field validator, by field role.",
			},
			[]string{"role"},
		),
	}
	reg.MustRegister(
		m.requests,
		m.apiDuration,
		m.draftRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// ObserveAPI records one API call. code is 0 when no response arrived.
func (m *Metrics) ObserveAPI(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.apiDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

func (m *Metrics) ObserveRejection(role string) {
	if m == nil {
		return
	}
	m.draftRejections.WithLabelValues(role).Inc()
}
