package routes

import (
	"log"
	"net/http"

	"quill-notes/quill/broker"
	"quill-notes/quill/database"
	"quill-notes/quill/models"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(group *gin.RouterGroup, db *database.Database, userService services.UserServiceInterface, noteService services.NoteServiceInterface) {
	group.GET("/admin/users", func(c *gin.Context) { AdminListUsers(c, db, userService) })
	group.PUT("/admin/users/:id/role", func(c *gin.Context) { AdminSetUserRole(c, db, userService) })
	group.PUT("/admin/users/:id/active", func(c *gin.Context) { AdminSetUserActive(c, db, userService) })
	group.DELETE("/admin/users/:id", func(c *gin.Context) { AdminDeleteUser(c, db, userService) })
	group.DELETE("/admin/notes/:id", func(c *gin.Context) { AdminDeleteNote(c, db, noteService) })
	group.POST("/admin/announcements", func(c *gin.Context) { AdminAnnounce(c, db) })
}

func AdminListUsers(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	params := map[string]interface{}{}
	if email := c.Query("email"); email != "" {
		params["email"] = email
	}
	if active := c.Query("active"); active != "" {
		params["active"] = active == "true"
	}

	users, err := userService.GetUsers(db, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func AdminSetUserRole(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var request roleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	actorID, ok := requesterID(c)
	if !ok {
		return
	}

	user, err := userService.SetRole(db, c.Param("id"), models.UserRole(request.Role), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func AdminSetUserActive(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var request activeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := userService.SetActive(db, c.Param("id"), *request.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func AdminDeleteUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	if err := userService.DeleteUser(db, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func AdminDeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	if err := noteService.ForceDeleteNote(db, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type announcementRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message"`
}

// AdminAnnounce persists a SYSTEM notification for every active user and
// broadcasts it to all connected clients, on this instance directly and on
// the others through the broker.
func AdminAnnounce(c *gin.Context, db *database.Database) {
	var request announcementRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	actorID, ok := requesterID(c)
	if !ok {
		return
	}

	users, err := services.UserServiceInstance.GetUsers(db, map[string]interface{}{"active": true})
	if err != nil {
		respondError(c, err)
		return
	}

	recipients := 0
	for _, user := range users {
		if user.ID == actorID {
			continue
		}
		_, err := services.NotificationServiceInstance.Notify(db, user.ID, models.NotificationSystem,
			request.Title, request.Message, map[string]interface{}{"actor_id": actorID.String()})
		if err != nil {
			log.Printf("Failed to notify user %s about announcement: %v", user.ID, err)
			continue
		}
		recipients++
	}

	if broker.DefaultProducer != nil {
		msg := models.ServerMessage{
			Type:    "announcement",
			Event:   string(models.NotificationSystem),
			Payload: gin.H{"title": request.Title, "message": request.Message},
		}
		if data, err := msg.ToJSON(); err == nil {
			if err := broker.DefaultProducer.PublishMessage(broker.AnnouncementSubject, data); err != nil {
				log.Printf("Failed to publish announcement to broker: %v", err)
			}
		}
	}

	respondData(c, http.StatusOK, gin.H{"recipients": recipients})
}
