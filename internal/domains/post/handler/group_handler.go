package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/shared/response"
)

// GroupHandler is the admin JSON API for groups
type GroupHandler struct {
	service service.GroupService
}

func NewGroupHandler(service service.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// Create handles POST /api/v1/admin/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req model.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if fields, ok := response.FieldErrors(err); ok {
			response.ValidationFailed(c, fields)
			return
		}
		if errors.Is(err, model.ErrGroupSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		h.internalError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// List handles GET /api/v1/admin/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.service.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if groups == nil {
		groups = []*model.Group{}
	}
	response.SuccessWithMeta(c, http.StatusOK, groups, &response.Meta{Total: len(groups)})
}

// Delete handles DELETE /api/v1/admin/groups/:slug
func (h *GroupHandler) Delete(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.service.Delete(c.Request.Context(), slug); err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slug": slug, "deleted": true})
}

func (h *GroupHandler) internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("group admin request failed")
	response.InternalServerError(c, "Internal server error")
}
