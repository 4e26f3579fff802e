package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/application"
	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

func notificationJSON(n *entity.Notification) gin.H {
	return gin.H{
		"notification_id": n.NotificationCode,
		"title":           n.Title,
		"message":         n.Message,
		"is_read":         n.IsRead,
		"sent_date":       n.SentDate,
		"read_date":       n.ReadDate,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unread") == "true"

	page, err := h.Svc.List(c.Request.Context(), c.GetString("userID"), unreadOnly, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]gin.H, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, notificationJSON(&page.Items[i]))
	}
	response.Success(c, http.StatusOK, items, "notifications", gin.H{
		"total":        page.Total,
		"unread_count": page.UnreadCount,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.Svc.MarkRead(c.Request.Context(), c.Param("code"), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, notificationJSON(n), "notification read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.Svc.MarkAllRead(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": count}, "all notifications read", nil)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("code"), c.GetString("userID")); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "notification deleted", nil)
}
