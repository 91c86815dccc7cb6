package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
)

// SystemMetrics is a lightweight snapshot for the health endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	RemoteCalls              uint64    `json:"remoteCalls"`
	RemoteFailures           uint64    `json:"remoteFailures"`
	StoreOperations          uint64    `json:"storeOperations"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer,
// collection controllers, the record store and the remote client.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	remoteTotal     *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	pending         *prometheus.GaugeVec
	size            *prometheus.GaugeVec
	resyncRuns      *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	remoteCount          uint64
	remoteFailureCount   uint64
	storeCount           uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of persisted store reads and writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_errors_total",
		Help: "Failed persisted store operations",
	}, []string{"backend", "op"})

	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_request_duration_seconds",
		Help:    "Duration of calls to the remote record service",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "op"})

	remoteTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_requests_total",
		Help: "Calls to the remote record service by outcome",
	}, []string{"entity", "op", "outcome"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_mutations_total",
		Help: "Collection mutations by resulting sync status",
	}, []string{"entity", "op", "sync"})

	pending := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "collection_pending_records",
		Help: "Records waiting for a remote sync",
	}, []string{"entity"})

	size := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "collection_records",
		Help: "Records held by each collection",
	}, []string{"entity"})

	resyncRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_resync_runs_total",
		Help: "Background resync runs by outcome",
	}, []string{"entity", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, storeErrors, remoteDuration, remoteTotal, mutations, pending, size, resyncRuns, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		storeErrors:     storeErrors,
		remoteDuration:  remoteDuration,
		remoteTotal:     remoteTotal,
		mutations:       mutations,
		pending:         pending,
		size:            size,
		resyncRuns:      resyncRuns,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation records one persisted store read or write.
func (m *MetricsService) ObserveStoreOperation(backend, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(backend, op).Observe(d.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(backend, op).Inc()
	}
	atomic.AddUint64(&m.storeCount, 1)
}

// ObserveRemoteRequest records one remote call.
func (m *MetricsService) ObserveRemoteRequest(entity, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteDuration.WithLabelValues(entity, op).Observe(d.Seconds())
	m.remoteTotal.WithLabelValues(entity, op, outcome).Inc()
	atomic.AddUint64(&m.remoteCount, 1)
	if outcome != "ok" {
		atomic.AddUint64(&m.remoteFailureCount, 1)
	}
}

// ObserveMutation counts a create, update or delete by its sync status.
func (m *MetricsService) ObserveMutation(entity, op string, status models.SyncStatus) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, op, string(status)).Inc()
}

// SetPending publishes the pending backlog of one collection.
func (m *MetricsService) SetPending(entity string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(entity).Set(float64(n))
}

// SetSize publishes the record count of one collection.
func (m *MetricsService) SetSize(entity string, n int) {
	if m == nil {
		return
	}
	m.size.WithLabelValues(entity).Set(float64(n))
}

// ObserveResync counts a background resync run.
func (m *MetricsService) ObserveResync(entity string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resyncRuns.WithLabelValues(entity, outcome).Inc()
}

// Snapshot returns aggregated metrics for the health endpoint.
func (m *MetricsService) Snapshot() SystemMetrics {
	if m == nil {
		return SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RemoteCalls:              atomic.LoadUint64(&m.remoteCount),
		RemoteFailures:           atomic.LoadUint64(&m.remoteFailureCount),
		StoreOperations:          atomic.LoadUint64(&m.storeCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
