package routes

import (
	"quill-notes/quill/middleware"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes sets up the WebSocket endpoint with
// authentication.
func RegisterWebSocketRoutes(router *gin.Engine, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	wsGroup := router.Group("/api/v1/ws")
	wsGroup.Use(middleware.WebSocketAuthMiddleware(authService))
	{
		wsGroup.GET("", func(c *gin.Context) {
			wsService.HandleConnection(c)
		})
	}
}
