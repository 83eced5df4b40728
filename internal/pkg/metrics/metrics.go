package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約操作の結果（operation: create/check_in/..., outcome: success/slot_taken/...）
	ReservationOperationsTotal *prometheus.CounterVec

	// 座席・日付ロックの待ち時間（backend: redis/store, status: success/failed）
	LockWaitDuration *prometheus.HistogramVec

	// 自動処理で処理した件数（sweep: reminders/loan_alerts/no_shows）
	SweepItemsTotal *prometheus.CounterVec

	// 自動処理のエラー数（sweep）
	SweepErrorsTotal *prometheus.CounterVec

	// 自動処理1回の所要時間
	AutomationRunDuration prometheus.Histogram
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_operations_total",
				Help: "Reservation operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		LockWaitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seat_lock_wait_seconds",
				Help:    "Time spent acquiring per seat/date locks",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "status"},
		),
		SweepItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_sweep_items_total",
				Help: "Items handled by automation sweeps",
			},
			[]string{"sweep"},
		),
		SweepErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_sweep_errors_total",
				Help: "Errors reported by automation sweeps",
			},
			[]string{"sweep"},
		),
		AutomationRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "automation_run_duration_seconds",
				Help:    "Duration of one automation run",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationOperationsTotal,
		m.LockWaitDuration,
		m.SweepItemsTotal,
		m.SweepErrorsTotal,
		m.AutomationRunDuration,
	)

	return m
}

// ObserveOperation は予約操作の結果を記録する（m が nil の場合は何もしない）
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.ReservationOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveLockWait はロック待ち時間を記録する
func (m *Metrics) ObserveLockWait(backend string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.LockWaitDuration.WithLabelValues(backend, status).Observe(time.Since(started).Seconds())
}

// ObserveSweep は自動処理1種類分の結果を記録する
func (m *Metrics) ObserveSweep(sweep string, items, errs int) {
	if m == nil {
		return
	}
	m.SweepItemsTotal.WithLabelValues(sweep).Add(float64(items))
	m.SweepErrorsTotal.WithLabelValues(sweep).Add(float64(errs))
}

// ObserveRun は自動処理1回の所要時間を記録する
func (m *Metrics) ObserveRun(started time.Time) {
	if m == nil {
		return
	}
	m.AutomationRunDuration.Observe(time.Since(started).Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す（未初期化の場合は nil）
func Get() *Metrics {
	return defaultMetrics
}
