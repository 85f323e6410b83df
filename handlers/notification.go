package handlers

import (
	"net/http"

	"brandconnect/middleware"
	"brandconnect/services/notification"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifications notification.NotificationService
}

func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	list, err := h.Notifications.ListNotifications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	n, err := h.Notifications.MarkNotificationRead(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
