package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inari-web/internal/storage"
	"inari-web/internal/thumbnails"
)

// ServeThumbnail streams or redirects to a thumbnail, resizing it when
// w, h, fit, crop, quality, format or preset are given.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	opts, err := thumbnails.ParseOptions(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.thumbs.Fetch(c.Request.Context(), c.Param("key"), opts)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thumbnail key"})
		return
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "thumbnail not found"})
		return
	case err != nil:
		h.logger.Error("failed to fetch thumbnail", zap.String("key", c.Param("key")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load thumbnail"})
		return
	}

	if res.RedirectURL != "" {
		c.Redirect(http.StatusFound, res.RedirectURL)
		return
	}

	defer res.Body.Close()
	c.Header("Cache-Control", "private, max-age=86400")
	c.Header("Content-Type", res.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, res.Body); err != nil {
		h.logger.Debug("thumbnail copy interrupted", zap.Error(err))
	}
}
