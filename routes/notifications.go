package routes

import (
	"net/http"

	"quill-notes/quill/database"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

func RegisterNotificationRoutes(group *gin.RouterGroup, db *database.Database, notificationService services.NotificationServiceInterface) {
	group.GET("/notifications", func(c *gin.Context) { GetNotifications(c, db, notificationService) })
	group.GET("/notifications/unread-count", func(c *gin.Context) { GetUnreadCount(c, db, notificationService) })
	group.PUT("/notifications/read-all", func(c *gin.Context) { MarkAllNotificationsRead(c, db, notificationService) })
	group.PUT("/notifications/:id/read", func(c *gin.Context) { MarkNotificationRead(c, db, notificationService) })
	group.DELETE("/notifications/:id", func(c *gin.Context) { DeleteNotification(c, db, notificationService) })
}

func GetNotifications(c *gin.Context, db *database.Database, notificationService services.NotificationServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	params := map[string]interface{}{"user_id": userID}

	if ntype := c.Query("type"); ntype != "" {
		params["type"] = ntype
	}
	if isRead := c.Query("is_read"); isRead != "" {
		params["is_read"] = isRead == "true"
	}

	page, limit := paginationParams(c)
	params["page"] = page
	params["limit"] = limit

	notifications, total, err := notificationService.GetNotifications(db, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, notifications, NewPagination(total, page, limit))
}

func GetUnreadCount(c *gin.Context, db *database.Database, notificationService services.NotificationServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	count, err := notificationService.UnreadCount(db, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"count": count})
}

func MarkNotificationRead(c *gin.Context, db *database.Database, notificationService services.NotificationServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	notification, err := notificationService.MarkRead(db, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, notification)
}

func MarkAllNotificationsRead(c *gin.Context, db *database.Database, notificationService services.NotificationServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	count, err := notificationService.MarkAllRead(db, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"marked": count})
}

func DeleteNotification(c *gin.Context, db *database.Database, notificationService services.NotificationServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	if err := notificationService.DeleteNotification(db, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
