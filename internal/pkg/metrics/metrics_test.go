package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.ReservationOperationsTotal)
	assert.NotNil(t, m.LockWaitDuration)
	assert.NotNil(t, m.SweepItemsTotal)
	assert.NotNil(t, m.SweepErrorsTotal)
	assert.NotNil(t, m.AutomationRunDuration)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/reservations/:id", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "409").Inc()

	assert.Equal(t, 3, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveOperation("create", "success")
	m.ObserveOperation("create", "success")
	m.ObserveOperation("create", "slot_taken")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReservationOperationsTotal.WithLabelValues("create", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReservationOperationsTotal.WithLabelValues("create", "slot_taken")))
}

func TestObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveSweep("no_shows", 3, 0)
	m.ObserveSweep("no_shows", 1, 1)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.SweepItemsTotal.WithLabelValues("no_shows")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepErrorsTotal.WithLabelValues("no_shows")))
}

func TestObserveLockWait(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveLockWait("redis", time.Now(), nil)
	m.ObserveLockWait("redis", time.Now(), errors.New("busy"))
	m.ObserveRun(time.Now())

	assert.Equal(t, 2, testutil.CollectAndCount(m.LockWaitDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AutomationRunDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("create", "success")
		m.ObserveLockWait("redis", time.Now(), nil)
		m.ObserveSweep("reminders", 1, 0)
		m.ObserveRun(time.Now())
	})
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Init はデフォルトレジストリに登録するため、テストでは直接セットする
	m := NewWithRegistry(prometheus.NewRegistry())
	defaultMetrics = m

	assert.Equal(t, m, Get())
}
