package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-admin-dashboard/internal/service"
	"github.com/noah-isme/sma-admin-dashboard/pkg/response"
)

// NotificationHandler serves the recent notices feed.
type NotificationHandler struct {
	feed *service.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(feed *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List godoc
// @Summary Recent notices
// @Description Notices raised by collections, newest first
// @Tags Notifications
// @Produce json
// @Param limit query int false "Maximum notices" default(20)
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}
	items := h.feed.List(limit)
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}
