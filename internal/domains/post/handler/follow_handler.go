package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/shared/auth"
)

type FollowHandler struct {
	service service.FollowService
}

func NewFollowHandler(service service.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

// Follow handles GET /profile/:username/follow/; self or repeated follows get the 403 page.
func (h *FollowHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	if err := h.service.Follow(c.Request.Context(), auth.ViewerFrom(c), username); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}

// Unfollow handles GET /profile/:username/unfollow/
func (h *FollowHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	if err := h.service.Unfollow(c.Request.Context(), auth.ViewerFrom(c), username); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(username))
}
