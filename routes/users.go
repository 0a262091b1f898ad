package routes

import (
	"net/http"

	"quill-notes/quill/database"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(group *gin.RouterGroup, db *database.Database, userService services.UserServiceInterface) {
	group.GET("/users/:id", func(c *gin.Context) { GetUserById(c, db, userService) })
	group.PUT("/users/:id", func(c *gin.Context) { UpdateUser(c, db, userService) })
}

func GetUserById(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	user, err := userService.GetUserById(db, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func UpdateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var userData map[string]interface{}
	if err := c.ShouldBindJSON(&userData); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	user, err := userService.UpdateUser(db, c.Param("id"), userData, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}
