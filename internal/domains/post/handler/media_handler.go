package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/infrastructure/storage"
	"yatube-backend/internal/shared/response"
)

// MediaStore opens stored objects for streaming.
type MediaStore interface {
	Open(ctx context.Context, key string) (*storage.Object, error)
}

// MediaHandler streams post images out of object storage
type MediaHandler struct {
	store MediaStore
}

func NewMediaHandler(store MediaStore) *MediaHandler {
	return &MediaHandler{store: store}
}

// Serve handles GET /media/*key; only post images are exposed.
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, model.ImageKeyPrefix) || strings.Contains(key, "..") {
		response.NotFoundPage(c)
		return
	}

	obj, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			response.NotFoundPage(c)
			return
		}
		handleError(c, err)
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
