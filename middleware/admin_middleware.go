package middleware

import (
	"net/http"

	"quill-notes/quill/database"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminMiddleware gates the admin console: the authenticated identity must
// resolve to an active admin account. Runs after AuthMiddleware.
func AdminMiddleware(db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDInterface, exists := c.Get("userID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		userID, ok := userIDInterface.(uuid.UUID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
			return
		}

		user, err := services.UserServiceInstance.GetUserById(db, userID.String())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		if !user.Active || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Next()
	}
}
