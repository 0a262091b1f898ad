package routes

import (
	"net/http"
	"strconv"
	"strings"

	"quill-notes/quill/database"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface, shareService services.ShareServiceInterface) {
	group.GET("/notes", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })
	group.GET("/notes/suggestions", func(c *gin.Context) { GetSearchSuggestions(c, db, noteService) })

	group.GET("/notes/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })

	group.GET("/notes/:id/versions", func(c *gin.Context) { ListNoteVersions(c, db, noteService) })
	group.GET("/notes/:id/versions/:version", func(c *gin.Context) { GetNoteVersion(c, db, noteService) })
	group.POST("/notes/:id/versions/:version/restore", func(c *gin.Context) { RestoreNoteVersion(c, db, noteService) })

	group.GET("/notes/:id/share", func(c *gin.Context) { ListNoteShares(c, db, shareService) })
	group.PUT("/notes/:id/share", func(c *gin.Context) { ShareNote(c, db, shareService) })
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var noteData map[string]interface{}
	if err := c.ShouldBindJSON(&noteData); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}
	noteData["author_id"] = userID.String()

	createdNote, err := noteService.CreateNote(db, noteData)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, createdNote)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	note, err := noteService.GetNoteById(db, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, note)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var noteData map[string]interface{}
	if err := c.ShouldBindJSON(&noteData); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	updatedNote, err := noteService.UpdateNote(db, c.Param("id"), noteData, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updatedNote)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	if err := noteService.DeleteNote(db, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	params := map[string]interface{}{"requester_id": userID}

	if authorID := c.Query("author_id"); authorID != "" {
		params["author_id"] = authorID
	}
	if visibility := c.Query("visibility"); visibility != "" {
		params["visibility"] = visibility
	}
	if archived := c.Query("archived"); archived != "" {
		params["archived"] = archived == "true"
	}
	if tags := c.Query("tags"); tags != "" {
		params["tags"] = strings.Split(tags, ",")
	}
	if q := c.Query("q"); q != "" {
		params["q"] = q
	}
	if sortBy := c.Query("sort_by"); sortBy != "" {
		params["sort_by"] = sortBy
	}
	if sortDir := c.Query("sort_dir"); sortDir != "" {
		params["sort_dir"] = sortDir
	}

	page, limit := paginationParams(c)
	params["page"] = page
	params["limit"] = limit

	notes, total, err := noteService.GetNotes(db, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, notes, NewPagination(total, page, limit))
}

func GetSearchSuggestions(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	suggestions, err := noteService.GetSearchSuggestions(db, c.Query("q"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, suggestions)
}

func ListNoteVersions(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	versions, err := noteService.ListVersions(db, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, versions)
}

func GetNoteVersion(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", "version must be an integer")
		return
	}

	v, err := noteService.GetVersion(db, c.Param("id"), version, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, v)
}

func RestoreNoteVersion(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", "version must be an integer")
		return
	}

	note, err := noteService.RestoreVersion(db, c.Param("id"), version, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, note)
}

type shareRequest struct {
	UserIDs []string `json:"user_ids"`
}

func ShareNote(c *gin.Context, db *database.Database, shareService services.ShareServiceInterface) {
	var request shareRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	note, err := shareService.ShareNote(db, c.Param("id"), request.UserIDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, note)
}

func ListNoteShares(c *gin.Context, db *database.Database, shareService services.ShareServiceInterface) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	shares, err := shareService.ListShares(db, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, shares)
}
