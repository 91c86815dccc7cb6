package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/students", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/students", http.StatusCreated, 30*time.Millisecond)
	m.ObserveRemoteRequest("students", "list", "ok", time.Millisecond)
	m.ObserveRemoteRequest("students", "create", "timeout", time.Millisecond)
	m.ObserveStoreOperation("memory", "write", time.Millisecond, nil)
	m.ObserveStoreOperation("memory", "read", time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.RemoteCalls)
	assert.Equal(t, uint64(1), snap.RemoteFailures)
	assert.Equal(t, uint64(2), snap.StoreOperations)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("memory", "read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteTotal.WithLabelValues("students", "create", "timeout")))
}

func TestMetricsServiceCollectionGauges(t *testing.T) {
	m := NewMetricsService()
	m.ObserveMutation("fees", "create", models.SyncPending)
	m.SetPending("fees", 3)
	m.SetSize("fees", 12)
	m.ObserveResync("fees", errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("fees", "create", "pending")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pending.WithLabelValues("fees")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.size.WithLabelValues("fees")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resyncRuns.WithLabelValues("fees", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "collection_pending_records")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.SetPending("fees", 1)
	assert.Equal(t, SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
