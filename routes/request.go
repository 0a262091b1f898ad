package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requesterID pulls the authenticated identity out of the gin context
// (set by the auth middleware). Aborts with unauthorized when absent.
func requesterID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		respondErrorMessage(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return uuid.Nil, false
	}

	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		respondErrorMessage(c, http.StatusInternalServerError, "internal", "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func paginationParams(c *gin.Context) (page, limit int) {
	page, limit = 1, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}
