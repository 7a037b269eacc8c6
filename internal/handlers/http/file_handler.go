package http

import (
	"errors"
	"net/http"

	"videonet/internal/core/domain"
	"videonet/internal/core/ports"
	apperrors "videonet/pkg/errors"

	"github.com/gin-gonic/gin"
)

// FileMetrics is the slice of the monitoring collector the asset store uses.
type FileMetrics interface {
	FileUploaded(size int64)
}

type FileHandler struct {
	assets  ports.AssetService
	metrics FileMetrics
}

func NewFileHandler(assets ports.AssetService, metrics FileMetrics) *FileHandler {
	return &FileHandler{
		assets:  assets,
		metrics: metrics,
	}
}

func (h *FileHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/files")
	{
		api.POST("/upload", h.Upload)
		api.GET("/download/:id", h.Download)
		api.GET("/verify/:id", h.Verify)
		api.GET("/metadata/:id", h.Metadata)
		api.DELETE("/delete/:id", h.Delete)
	}
}

func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	roomID := domain.RoomID(c.PostForm("room_id"))

	meta, err := h.assets.Store(c.Request.Context(), header, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.metrics.FileUploaded(meta.Size)

	c.JSON(http.StatusOK, gin.H{
		"file_id":  meta.FileID,
		"filename": meta.Filename,
		"size":     meta.Size,
		"hash":     meta.Hash,
	})
}

func (h *FileHandler) Download(c *gin.Context) {
	meta, err := h.assets.Metadata(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.FileAttachment(meta.Path, meta.Filename)
}

// Verify compares the client's hash of a transferred file against the hash
// computed at upload time.
func (h *FileHandler) Verify(c *gin.Context) {
	clientHash := c.Query("client_hash")
	if clientHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_hash is required"})
		return
	}

	valid, meta, err := h.assets.Verify(c.Param("id"), clientHash)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id":     meta.FileID,
		"filename":    meta.Filename,
		"is_valid":    valid,
		"server_hash": meta.Hash,
		"client_hash": clientHash,
	})
}

func (h *FileHandler) Metadata(c *gin.Context) {
	meta, err := h.assets.Metadata(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}

func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.assets.Delete(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

func (h *FileHandler) renderError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.Is(err, domain.ErrFileNotFound) {
		appErr = apperrors.NewNotFoundError("file")
	} else {
		appErr = apperrors.NewInternalError(err.Error())
	}
	c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
}
