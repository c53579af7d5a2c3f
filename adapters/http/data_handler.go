package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
)

// importMaxBytes caps uploaded snapshot files.
const importMaxBytes = 20 << 20

// DataHandler covers the whole-document operations: export, import, clear,
// backups and sync status.
type DataHandler struct {
	manager *documentUC.Manager
}

func NewDataHandler(manager *documentUC.Manager) *DataHandler {
	return &DataHandler{manager: manager}
}

func (h *DataHandler) Export(c *gin.Context) {
	output, err := h.manager.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.Filename))
	c.Data(http.StatusOK, "application/json", output.Payload)
}

func (h *DataHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'file' is required"})
		return
	}
	if fileHeader.Size > importMaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "import file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "file cannot open"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, importMaxBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "file cannot be read"})
		return
	}

	// Sniff the content instead of trusting the filename.
	if detected := mimetype.Detect(payload); !detected.Is("application/json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("expected a JSON file, got %s", detected.String())})
		return
	}

	if _, err := h.manager.Import(c.Request.Context(), documentUC.ImportInput{
		Payload: payload,
		Confirm: c.PostForm("confirm") == "true",
	}); err != nil {
		respondError(c, err)
		return
	}

	// Import lands in the local tier; the remote store catches up on the
	// next contact.
	c.JSON(http.StatusOK, gin.H{
		"message": "import applied",
		"result":  SaveResultDTO{Synced: false},
	})
}

func (h *DataHandler) Clear(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is invalid"})
		return
	}

	output, err := h.manager.Clear(c.Request.Context(), documentUC.ClearInput{
		Confirm:      req.Confirm,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "all portfolio data cleared",
		"result":  SaveResultDTO{Synced: output.Result.Synced},
	})
}

func (h *DataHandler) ListBackups(c *gin.Context) {
	output, err := h.manager.ListBackups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": ToBackupInfoDTOs(output.Backups)})
}

func (h *DataHandler) RestoreBackup(c *gin.Context) {
	var req RestoreBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'key' is required"})
		return
	}

	output, err := h.manager.RestoreBackup(c.Request.Context(), documentUC.RestoreBackupInput{
		Key:     req.Key,
		Confirm: req.Confirm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "backup restored",
		"result":  SaveResultDTO{Synced: output.Result.Synced},
	})
}

func (h *DataHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ToStatusDTO(h.manager.Status()))
}
