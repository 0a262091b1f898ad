package routes

import (
	"net/http"

	"quill-notes/quill/database"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

func RegisterAuthRoutes(router *gin.Engine, db *database.Database, authService services.AuthServiceInterface, userService services.UserServiceInterface) {
	group := router.Group("/api/v1/auth")
	{
		group.POST("/login", func(c *gin.Context) { Login(c, db, authService) })
		group.POST("/register", func(c *gin.Context) { Register(c, db, userService) })
	}
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	token, err := authService.Login(db, request.Email, request.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, loginResponse{Token: token})
}

func Register(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := userService.Register(db, request.Email, request.Password, request.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, user)
}
