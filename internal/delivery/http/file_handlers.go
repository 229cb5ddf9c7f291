package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// FileHandler serves lesson assets stored in GridFS.
type FileHandler struct {
	assets domain.AssetUsecase
}

func NewFileHandler(assets domain.AssetUsecase) *FileHandler {
	return &FileHandler{assets: assets}
}

func (h *FileHandler) UploadLessonAsset(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if header.Size > repository.MaxAssetSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File too large, max %dMB", repository.MaxAssetSize/(1024*1024)),
		})
		return
	}

	info, err := h.assets.UploadLessonAsset(c.Request.Context(), c.Param("id"), file, header, session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "file": info})
}

// StreamLessonAsset streams the asset of a lesson the caller has unlocked.
func (h *FileHandler) StreamLessonAsset(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}

	stream, info, err := h.assets.OpenLessonAsset(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", info.ContentType)
	c.Header("Content-Length", fmt.Sprintf("%d", info.Size))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Headers are already out.
		slog.Warn("asset stream interrupted", "file_id", info.ID, "error", err)
	}
}
