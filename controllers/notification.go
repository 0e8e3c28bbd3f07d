package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhenyapindos/TaskManagerService/services"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

// HasUnread backs the frequent "do I have notifications" poll; it answers
// from the in-memory cache without touching the store.
func (nc *NotificationController) HasUnread(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"has_unread": nc.Notifications.HasUnread(currentUserID(c)),
	})
}

func (nc *NotificationController) Unread(c *gin.Context) {
	c.JSON(http.StatusOK, nc.Notifications.Unread(currentUserID(c)))
}

func (nc *NotificationController) All(c *gin.Context) {
	notifications, err := nc.Notifications.All(currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

type markReadRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := nc.Notifications.MarkManyAsRead(currentUserID(c), req.IDs); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Read"})
}
