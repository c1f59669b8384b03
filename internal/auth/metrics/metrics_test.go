package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("send_code", "ok", 12)
	m.ObserveRequest("send_code", "ok", 30)
	m.ObserveRequest("verify_code", "UNAUTHORIZED", 8)
	m.IncrementFailures("verify_code", "server")
	m.IncrementSignIns()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("send_code", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("verify_code", "UNAUTHORIZED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("verify_code", "server")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignIns))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDurationMs))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
