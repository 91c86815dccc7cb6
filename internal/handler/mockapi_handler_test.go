package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
)

func newMockAPI(t *testing.T, latency time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewMockAPIHandler(store.NewMemoryBackend(), MockAPIConfig{
		Collections: []string{"students", "fees"},
		Latency:     latency,
	}, nil, nil)
	r := gin.New()
	r.Use(h.Latency())
	h.Register(r)
	return r
}

func bareJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestMockAPICollectionLifecycle(t *testing.T) {
	r := newMockAPI(t, 0)

	w := do(r, http.MethodGet, "/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(r, http.MethodPost, "/students", map[string]interface{}{"id": 77, "name": "Jane Doe", "grade": "A"})
	require.Equal(t, http.StatusCreated, w.Code)
	var first map[string]interface{}
	bareJSON(t, w, &first)
	assert.Equal(t, float64(1), first["id"])

	w = do(r, http.MethodPost, "/students", map[string]interface{}{"name": "John Roe", "grade": "B"})
	var second map[string]interface{}
	bareJSON(t, w, &second)
	assert.Equal(t, float64(2), second["id"])

	w = do(r, http.MethodPatch, "/students/1", map[string]interface{}{"grade": "C"})
	require.Equal(t, http.StatusOK, w.Code)
	var patched map[string]interface{}
	bareJSON(t, w, &patched)
	assert.Equal(t, "Jane Doe", patched["name"])
	assert.Equal(t, "C", patched["grade"])

	w = do(r, http.MethodPut, "/students/1", map[string]interface{}{"name": "Jane D."})
	require.Equal(t, http.StatusOK, w.Code)
	var replaced map[string]interface{}
	bareJSON(t, w, &replaced)
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "Jane D."}, replaced)

	w = do(r, http.MethodDelete, "/students/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/students/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/students/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/students/9", map[string]interface{}{}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/unknown", nil).Code)

	w = do(r, http.MethodPost, "/students", map[string]interface{}{"name": "Third"})
	var third map[string]interface{}
	bareJSON(t, w, &third)
	assert.Equal(t, float64(3), third["id"])
}

func TestMockAPILatencyTriggersClientTimeout(t *testing.T) {
	srv := httptest.NewServer(newMockAPI(t, 200*time.Millisecond))
	defer srv.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := client.Get(srv.URL + "/students")
	assert.Error(t, err)
}

func TestDashboardSyncsWithMockAPI(t *testing.T) {
	srv := httptest.NewServer(newMockAPI(t, 0))
	defer srv.Close()

	gin.SetMode(gin.TestMode)
	reg := catalog.NewRegistry(catalog.Deps{
		Backend: store.NewMemoryBackend(),
		Remote:  config.RemoteConfig{BaseURL: srv.URL, Timeout: time.Second},
	})
	require.NoError(t, catalog.Register(reg, catalog.StudentDefinition()))
	require.NoError(t, reg.LoadAll(context.Background()))
	r := gin.New()
	NewCollectionHandler(reg, nil, nil).Register(r.Group("/api/v1"))

	w := do(r, http.MethodPost, "/api/v1/students", map[string]interface{}{"name": "Jane Doe", "email": "jane@x.com", "grade": "A"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, string(models.SyncSynced), env.Meta["sync"])
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, float64(1), created["id"])

	w = do(r, http.MethodPatch, "/api/v1/students/1", map[string]interface{}{"grade": "B"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(models.SyncSynced), decode(t, w).Meta["sync"])

	resp, err := http.Get(srv.URL + "/students/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	var remote map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&remote))
	assert.Equal(t, "B", remote["grade"])

	w = do(r, http.MethodDelete, "/api/v1/students/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.SyncSynced), decode(t, w).Meta["sync"])
}
