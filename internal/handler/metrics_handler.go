package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/service"
)

// Readiness reports controller load state.
type Readiness interface {
	ModuleSource
	Ready() bool
	PendingTotal() int
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics   *service.MetricsService
	readiness Readiness
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, readiness Readiness) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, readiness: readiness}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a liveness payload and a metrics snapshot.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "metrics": h.metrics.Snapshot()})
}

// Ready returns 503 until every collection has loaded.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.readiness == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	states := make(map[string]string)
	for _, m := range h.readiness.Modules() {
		states[m.Name()] = m.State().String()
	}
	body := gin.H{"collections": states, "pending": h.readiness.PendingTotal()}
	if !h.readiness.Ready() {
		body["status"] = "loading"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}

var _ Readiness = (*catalog.Registry)(nil)
