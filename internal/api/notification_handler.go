package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/service"
)

// NotificationHandler serves the inbox of the signed-in user.
type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary Notifications of the current user, newest first
// @Tags Notifications
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	page, err := pageRequest(c, "-createdAt")
	if err != nil {
		respondError(c, err)
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	result, err := h.notificationService.List(c.Request.Context(), actorID(c), unreadOnly, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

// UnreadCount godoc
// @Summary Number of unread notifications
// @Tags Notifications
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notificationService.UnreadCount(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": n})
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary Mark every notification as read
// @Tags Notifications
// @Security BearerAuth
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "All notifications marked as read", gin.H{"updated": n})
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Notification deleted", nil)
}
