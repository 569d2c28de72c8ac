package http

import "github.com/prometheus/client_golang/prometheus"

// Metrics contains the Prometheus collectors for the HTTP API.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	AuthOutcomes  *prometheus.CounterVec
}

// NewMetrics creates and registers the API metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kana_auth_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kana_auth_outcomes_total",
				Help: "Total number of auth operations by operation and result code",
			},
			[]string{"operation", "code"},
		),
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.AuthOutcomes)

	return m
}
