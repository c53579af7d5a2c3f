package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
	"github.com/minhvu/portfolio-hub/internal/render"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

// PortfolioHandler serves the public read surface: the raw document as JSON
// and the pre-rendered HTML fragments.
type PortfolioHandler struct {
	manager *documentUC.Manager
	cache   *render.Cache
	logger  logger.Logger
}

func NewPortfolioHandler(manager *documentUC.Manager, cache *render.Cache, log logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{manager: manager, cache: cache, logger: log}
}

func (h *PortfolioHandler) GetDocument(c *gin.Context) {
	doc, err := h.manager.Document(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GetSection serves a section fragment. The cache filled by the render
// worker is preferred; a miss falls back to rendering in-request so the
// page never depends on the worker being up.
func (h *PortfolioHandler) GetSection(c *gin.Context) {
	section := c.Param("section")

	if h.cache != nil {
		html, found, err := h.cache.Get(c.Request.Context(), section)
		if err != nil {
			h.logger.Warn("Render cache unavailable, rendering live", zap.Error(err))
		} else if found {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
			return
		}
	}

	doc, err := h.manager.Document(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	html, err := render.Render(doc, section)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown section"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
