package handlers

import (
	"net/http"

	"estately/models"
	"estately/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// ListNotificationsHandler returns the caller's notifications, newest first.
// Admins also see broadcast rows.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	list, err := h.Service.ListForUser(c.Request.Context(), actor.UserID, actor.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "unread": unread})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
