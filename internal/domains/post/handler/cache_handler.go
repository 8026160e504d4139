package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	infraCache "yatube-backend/internal/infrastructure/cache"
	"yatube-backend/internal/shared/response"
)

// CacheHandler lets admins drop every cached page
type CacheHandler struct {
	store infraCache.PageStore
}

func NewCacheHandler(store infraCache.PageStore) *CacheHandler {
	return &CacheHandler{store: store}
}

// Clear handles POST /api/v1/admin/cache/clear
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("page cache clear failed")
		response.InternalServerError(c, "could not clear page cache")
		return
	}
	log.Info().Msg("page cache cleared")
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}
