package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
)

type ProfileHandler struct {
	manager *documentUC.Manager
}

func NewProfileHandler(manager *documentUC.Manager) *ProfileHandler {
	return &ProfileHandler{manager: manager}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	doc, err := h.manager.Document(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": doc.Profile})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'profile' is required"})
		return
	}

	output, err := h.manager.UpdateProfile(c.Request.Context(), documentUC.UpdateProfileInput{
		Profile: req.Profile,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": output.Profile,
		"result":  SaveResultDTO{Synced: output.Result.Synced},
	})
}
