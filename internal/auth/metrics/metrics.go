package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth client operations.
type Metrics struct {
	Requests          *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	Failures          *prometheus.CounterVec
	SignIns           prometheus.Counter
}

// New registers auth client collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mobileauth_client_requests_total",
			Help: "Total number of auth client requests by endpoint and outcome code",
		}, []string{"endpoint", "outcome"}),
		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mobileauth_client_request_duration_ms",
			Help:    "Duration of auth client requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"endpoint"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mobileauth_client_failures_total",
			Help: "Total number of failed auth client requests by endpoint and error origin",
		}, []string{"endpoint", "origin"}),
		SignIns: factory.NewCounter(prometheus.CounterOpts{
			Name: "mobileauth_client_sign_ins_total",
			Help: "Total number of successful code verifications",
		}),
	}
}

// ObserveRequest records one completed request. outcome is "ok" or the
// error code carried by the result.
func (m *Metrics) ObserveRequest(endpoint, outcome string, durationMs float64) {
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDurationMs.WithLabelValues(endpoint).Observe(durationMs)
}

func (m *Metrics) IncrementFailures(endpoint, origin string) {
	m.Failures.WithLabelValues(endpoint, origin).Inc()
}

func (m *Metrics) IncrementSignIns() {
	m.SignIns.Inc()
}
