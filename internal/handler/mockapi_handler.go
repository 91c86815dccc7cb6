package handler

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/store"
)

type mockRecord = map[string]interface{}

// MockAPIConfig configures the mock REST service.
type MockAPIConfig struct {
	KeyPrefix   string
	Collections []string
	Latency     time.Duration
}

// MockAPIHandler is a json-server style REST service. Responses are bare JSON
// rather than the dashboard envelope, and ids are assigned as max(id)+1.
type MockAPIHandler struct {
	records     *store.Records[mockRecord]
	prefix      string
	collections map[string]struct{}
	latency     time.Duration
	logger      *zap.Logger

	mu sync.Mutex
}

// NewMockAPIHandler builds the mock service over backend.
func NewMockAPIHandler(backend store.Backend, cfg MockAPIConfig, logger *zap.Logger, observer store.Observer) *MockAPIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mockapi"
	}
	names := make(map[string]struct{}, len(cfg.Collections))
	for _, n := range cfg.Collections {
		names[n] = struct{}{}
	}
	return &MockAPIHandler{
		records:     store.NewRecords[mockRecord](backend, logger, observer),
		prefix:      cfg.KeyPrefix,
		collections: names,
		latency:     cfg.Latency,
		logger:      logger,
	}
}

// Register mounts the collection routes on r.
func (h *MockAPIHandler) Register(r gin.IRoutes) {
	r.GET("/:collection", h.List)
	r.POST("/:collection", h.Create)
	r.GET("/:collection/:id", h.Get)
	r.PUT("/:collection/:id", h.Replace)
	r.PATCH("/:collection/:id", h.Patch)
	r.DELETE("/:collection/:id", h.Delete)
}

// Latency delays every request by the configured duration.
func (h *MockAPIHandler) Latency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.latency > 0 {
			timer := time.NewTimer(h.latency)
			select {
			case <-timer.C:
			case <-c.Request.Context().Done():
				timer.Stop()
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
		}
		c.Next()
	}
}

// List returns every record of a collection.
func (h *MockAPIHandler) List(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	h.mu.Lock()
	items, state := h.records.Read(c.Request.Context(), key)
	h.mu.Unlock()
	if state == store.Unavailable {
		c.JSON(http.StatusServiceUnavailable, gin.H{})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one record or 404.
func (h *MockAPIHandler) Get(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	id, ok := mockID(c)
	if !ok {
		return
	}
	h.mu.Lock()
	items, _ := h.records.Read(c.Request.Context(), key)
	h.mu.Unlock()
	if i := indexOf(items, id); i >= 0 {
		c.JSON(http.StatusOK, items[i])
		return
	}
	c.JSON(http.StatusNotFound, gin.H{})
}

// Create stores a record with a fresh server-side id.
func (h *MockAPIHandler) Create(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	var body mockRecord
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	items, state := h.records.Read(c.Request.Context(), key)
	if state == store.Unavailable {
		c.JSON(http.StatusServiceUnavailable, gin.H{})
		return
	}
	body["id"] = nextMockID(items)
	items = append(items, body)
	if !h.write(c, key, items) {
		return
	}
	c.JSON(http.StatusCreated, body)
}

// Replace overwrites a record, keeping its id.
func (h *MockAPIHandler) Replace(c *gin.Context) {
	h.modify(c, func(_ mockRecord, body mockRecord) mockRecord { return body })
}

// Patch merges fields into a record.
func (h *MockAPIHandler) Patch(c *gin.Context) {
	h.modify(c, func(current mockRecord, body mockRecord) mockRecord {
		merged := make(mockRecord, len(current)+len(body))
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range body {
			merged[k] = v
		}
		return merged
	})
}

// Delete removes a record and answers with an empty object.
func (h *MockAPIHandler) Delete(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	id, ok := mockID(c)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	items, _ := h.records.Read(c.Request.Context(), key)
	i := indexOf(items, id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	items = append(items[:i:i], items[i+1:]...)
	if !h.write(c, key, items) {
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *MockAPIHandler) modify(c *gin.Context, apply func(current, body mockRecord) mockRecord) {
	key, ok := h.key(c)
	if !ok {
		return
	}
	id, ok := mockID(c)
	if !ok {
		return
	}
	var body mockRecord
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	items, _ := h.records.Read(c.Request.Context(), key)
	i := indexOf(items, id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	updated := apply(items[i], body)
	updated["id"] = id
	items[i] = updated
	if !h.write(c, key, items) {
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *MockAPIHandler) write(c *gin.Context, key string, items []mockRecord) bool {
	if err := h.records.Write(c.Request.Context(), key, items); err != nil {
		h.logger.Error("mock api write failed", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return false
	}
	return true
}

func (h *MockAPIHandler) key(c *gin.Context) (string, bool) {
	name := c.Param("collection")
	if len(h.collections) > 0 {
		if _, ok := h.collections[name]; !ok {
			c.JSON(http.StatusNotFound, gin.H{})
			return "", false
		}
	}
	return h.prefix + ":" + name, true
}

func mockID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{})
		return 0, false
	}
	return id, true
}

func recordID(r mockRecord) (int64, bool) {
	switch v := r["id"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}
	return 0, false
}

func indexOf(items []mockRecord, id int64) int {
	for i, item := range items {
		if got, ok := recordID(item); ok && got == id {
			return i
		}
	}
	return -1
}

func nextMockID(items []mockRecord) int64 {
	var highest int64
	for _, item := range items {
		if id, ok := recordID(item); ok && id > highest {
			highest = id
		}
	}
	return highest + 1
}
