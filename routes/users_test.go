package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill-notes/quill/database"
	"quill-notes/quill/models"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// profileUserService gives the profile routes a user to act on, unlike the
// empty MockUserService used by the auth tests.
type profileUserService struct {
	MockUserService
}

func (m *profileUserService) GetUserById(db *database.Database, id string) (models.User, error) {
	if id != testRequester.String() {
		return models.User{}, services.ErrUserNotFound
	}
	return models.User{ID: testRequester, Email: "user@example.com", DisplayName: "Test User"}, nil
}

func (m *profileUserService) UpdateUser(db *database.Database, id string, updatedData map[string]interface{}, requesterID uuid.UUID) (models.User, error) {
	if id != testRequester.String() {
		return models.User{}, services.ErrUserNotFound
	}
	if id != requesterID.String() {
		return models.User{}, services.ErrForbidden
	}
	displayName, _ := updatedData["display_name"].(string)
	return models.User{ID: testRequester, Email: "user@example.com", DisplayName: displayName}, nil
}

func setupUsersRouter(requester uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(injectUser(requester))
	RegisterUserRoutes(group, &database.Database{}, &profileUserService{})
	return router
}

func TestGetUserByIdRoute(t *testing.T) {
	router := setupUsersRouter(testRequester)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/users/"+testRequester.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/users/"+uuid.New().String(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUserRoute(t *testing.T) {
	router := setupUsersRouter(testRequester)

	body := bytes.NewBufferString(`{"display_name": "Renamed"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/users/"+testRequester.String(), body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
}

func TestUpdateUserRoute_OtherProfileForbidden(t *testing.T) {
	router := setupUsersRouter(uuid.New())

	body := bytes.NewBufferString(`{"display_name": "Hijacked"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/users/"+testRequester.String(), body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "forbidden", env.Error.Kind)
}
