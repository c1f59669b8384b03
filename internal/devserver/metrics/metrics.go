package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the dev verification server.
type Metrics struct {
	CodesIssued     prometheus.Counter
	SendRejections  *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	Lockouts        prometheus.Counter
	UsersCreated    prometheus.Counter
	EndpointLatency *prometheus.HistogramVec
	PendingCodes    prometheus.Gauge
}

// New registers dev server collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "mobileauth_dev_codes_issued_total",
			Help: "Total number of verification codes issued",
		}),
		SendRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mobileauth_dev_send_rejections_total",
			Help: "Total number of rejected send-code requests by error code",
		}, []string{"code"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mobileauth_dev_verifications_total",
			Help: "Total number of verify-code requests by outcome",
		}, []string{"outcome"}),
		Lockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "mobileauth_dev_lockouts_total",
			Help: "Total number of codes burned after too many failed attempts",
		}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mobileauth_dev_users_created_total",
			Help: "Total number of users created on first verification",
		}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mobileauth_dev_endpoint_latency_seconds",
			Help:    "Latency of dev server endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		PendingCodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mobileauth_dev_pending_codes",
			Help: "Current number of outstanding verification codes",
		}),
	}
}

func (m *Metrics) IncrementCodesIssued() {
	m.CodesIssued.Inc()
}

func (m *Metrics) IncrementSendRejections(code string) {
	m.SendRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementVerifications(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementLockouts() {
	m.Lockouts.Inc()
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) SetPendingCodes(n int) {
	m.PendingCodes.Set(float64(n))
}
