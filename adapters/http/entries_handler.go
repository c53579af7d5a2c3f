package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
)

// EntriesHandler is the uniform CRUD surface over every portfolio
// collection. The collection name is a path parameter, so adding a new
// collection never means adding a handler.
type EntriesHandler struct {
	manager *documentUC.Manager
}

func NewEntriesHandler(manager *documentUC.Manager) *EntriesHandler {
	return &EntriesHandler{manager: manager}
}

func (h *EntriesHandler) Create(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'fields' is required"})
		return
	}

	output, err := h.manager.CreateEntry(c.Request.Context(), documentUC.CreateEntryInput{
		Collection: c.Param("collection"),
		Fields:     req.Fields,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":  output.Entry,
		"result": SaveResultDTO{Synced: output.Result.Synced},
	})
}

func (h *EntriesHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'id' must be numeric"})
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'fields' is required"})
		return
	}

	output, err := h.manager.UpdateEntry(c.Request.Context(), documentUC.UpdateEntryInput{
		Collection: c.Param("collection"),
		ID:         id,
		Fields:     req.Fields,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if !output.Updated {
		// The entry vanished underneath the edit; the admin UI reloads.
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": true,
		"entry":   output.Entry,
		"result":  SaveResultDTO{Synced: output.Result.Synced},
	})
}

func (h *EntriesHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'id' must be numeric"})
		return
	}

	// Deletion is destructive, so the client must say it means it.
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "deletion requires confirm=true"})
		return
	}

	output, err := h.manager.DeleteEntry(c.Request.Context(), documentUC.DeleteEntryInput{
		Collection: c.Param("collection"),
		ID:         id,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": output.Deleted,
		"result":  SaveResultDTO{Synced: output.Result.Synced},
	})
}
