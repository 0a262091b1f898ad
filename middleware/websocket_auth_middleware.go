package middleware

import (
	"net/http"

	"quill-notes/quill/services"
	"quill-notes/quill/utils/token"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware validates bearer credentials for WebSocket
// connections. The token may arrive as a query parameter because browser
// WebSocket clients cannot set headers. A failed validation terminates the
// connection attempt; the client must reconnect with a fresh credential.
func WebSocketAuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
