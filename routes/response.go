package routes

import (
	"errors"
	"net/http"
	"time"

	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Path      string      `json:"path"`
}

// APIError carries a machine-stable kind alongside the human message.
// Store internals never leak into it.
type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Pagination is the standard list metadata.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

type pagedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func respondPage(c *gin.Context, items interface{}, pagination Pagination) {
	respondData(c, http.StatusOK, pagedData{Items: items, Pagination: pagination})
}

func respondError(c *gin.Context, err error) {
	status, kind := classifyError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Never expose store-specific error text to the caller.
		message = services.ErrInternal.Error()
	}
	c.JSON(status, Envelope{
		Success:   false,
		Error:     &APIError{Kind: kind, Message: message},
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func respondErrorMessage(c *gin.Context, status int, kind, message string) {
	c.JSON(status, Envelope{
		Success:   false,
		Error:     &APIError{Kind: kind, Message: message},
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

// classifyError maps service sentinel errors onto the HTTP error taxonomy.
// NotFound and Forbidden stay distinct: an existing but inaccessible
// resource is forbidden, never hidden as missing.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrVersionNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrGranteeNotFound),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidVisibility):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, services.ErrEmailExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
