package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
	"github.com/noah-isme/sma-admin-dashboard/internal/service"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
	"github.com/noah-isme/sma-admin-dashboard/pkg/response"
)

const contextModuleKey = "collectionModule"

// ModuleSource lists the registered collections.
type ModuleSource interface {
	Modules() []catalog.Module
}

type resyncTrigger interface {
	Trigger(ctx context.Context, name string) (collection.ResyncReport, error)
}

// CollectionHandler exposes the same CRUD surface for every registered collection.
type CollectionHandler struct {
	modules ModuleSource
	exports *service.ExportService
	sync    resyncTrigger
}

// NewCollectionHandler constructs CollectionHandler. sync may be nil, in which
// case POST /sync resyncs inline.
func NewCollectionHandler(modules ModuleSource, exports *service.ExportService, sync resyncTrigger) *CollectionHandler {
	if exports == nil {
		exports = service.NewExportService(nil)
	}
	return &CollectionHandler{modules: modules, exports: exports, sync: sync}
}

// Register mounts one route group per collection. guard runs before every
// mutating route.
func (h *CollectionHandler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	for _, m := range h.modules.Modules() {
		g := rg.Group("/"+m.Name(), bindModule(m))
		g.GET("", h.List)
		g.GET("/summary", h.Summary)
		g.GET("/schema", h.Schema)
		g.POST("/validate", h.Validate)
		g.GET("/export", h.Export)
		g.GET("/:id", h.Get)
		g.POST("", chain(guard, h.Create)...)
		g.PUT("/:id", chain(guard, h.Replace)...)
		g.PATCH("/:id", chain(guard, h.Update)...)
		g.DELETE("/:id", chain(guard, h.Delete)...)
		g.POST("/sync", chain(guard, h.Sync)...)
	}
}

// List godoc
// @Summary List records of a collection
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name, e.g. students"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /{collection} [get]
func (h *CollectionHandler) List(c *gin.Context) {
	m := moduleFrom(c)
	items, count, err := m.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{
		"count":   count,
		"state":   m.State().String(),
		"pending": m.PendingCount(),
		"remote":  m.HasRemote(),
	})
}

// Get godoc
// @Summary Get one record
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /{collection}/{id} [get]
func (h *CollectionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	record, err := moduleFrom(c).Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Create a record
// @Description Validates the payload, assigns an id and pushes the record to the remote service when one is configured.
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param payload body map[string]interface{} true "Record fields"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /{collection} [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	res, err := moduleFrom(c).Create(c.Request.Context(), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res.Record, syncMeta(res))
}

// Update godoc
// @Summary Merge fields into a record
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path int true "Record ID"
// @Param payload body map[string]interface{} true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /{collection}/{id} [patch]
func (h *CollectionHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Replace godoc
// @Summary Replace a record
// @Description Optional fields missing from the payload are cleared.
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path int true "Record ID"
// @Param payload body map[string]interface{} true "Record fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /{collection}/{id} [put]
func (h *CollectionHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

func (h *CollectionHandler) update(c *gin.Context, replace bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	m := moduleFrom(c)
	var (
		res catalog.MutationResult
		err error
	)
	if replace {
		res, err = m.Replace(c.Request.Context(), id, fields)
	} else {
		res, err = m.Update(c.Request.Context(), id, fields)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res.Record, syncMeta(res))
}

// Delete godoc
// @Summary Delete a record
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /{collection}/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := moduleFrom(c).Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id}, syncMeta(res))
}

// Summary godoc
// @Summary Aggregate figures for a collection
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} response.Envelope
// @Router /{collection}/summary [get]
func (h *CollectionHandler) Summary(c *gin.Context) {
	summary, err := moduleFrom(c).Summary()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Schema godoc
// @Summary Form descriptor for a collection
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} response.Envelope
// @Router /{collection}/schema [get]
func (h *CollectionHandler) Schema(c *gin.Context) {
	m := moduleFrom(c)
	response.JSON(c, http.StatusOK, m.Schema().Form(), map[string]interface{}{"entity": m.Entity()})
}

// Validate godoc
// @Summary Validate fields without saving
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param payload body map[string]interface{} true "Record fields"
// @Success 200 {object} response.Envelope
// @Router /{collection}/validate [post]
func (h *CollectionHandler) Validate(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	errs := moduleFrom(c).Validate(fields)
	if errs == nil {
		errs = map[string]string{}
	}
	response.JSON(c, http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs}, nil)
}

// Export godoc
// @Summary Export a collection as a table
// @Tags Collections
// @Produce text/csv
// @Produce application/pdf
// @Param collection path string true "Collection name"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /{collection}/export [get]
func (h *CollectionHandler) Export(c *gin.Context) {
	result, err := h.exports.Export(moduleFrom(c), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Payload)
}

// Sync godoc
// @Summary Retry pending remote calls for a collection
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} response.Envelope
// @Router /{collection}/sync [post]
func (h *CollectionHandler) Sync(c *gin.Context) {
	m := moduleFrom(c)
	var (
		report collection.ResyncReport
		err    error
	)
	if h.sync != nil {
		report, err = h.sync.Trigger(c.Request.Context(), m.Name())
	} else {
		report, err = m.Resync(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func bindModule(m catalog.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextModuleKey, m)
		c.Next()
	}
}

func moduleFrom(c *gin.Context) catalog.Module {
	return c.MustGet(contextModuleKey).(catalog.Module)
}

func chain(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guard)+1)
	out = append(out, guard...)
	return append(out, h)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}

func bindFields(c *gin.Context) (map[string]interface{}, bool) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return fields, true
}

func syncMeta(res catalog.MutationResult) map[string]interface{} {
	meta := map[string]interface{}{"sync": res.Sync}
	if res.RemoteErr != nil {
		meta["remoteError"] = res.RemoteErr.Error()
	}
	return meta
}
