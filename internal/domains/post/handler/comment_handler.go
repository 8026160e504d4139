package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/shared/auth"
	"yatube-backend/internal/shared/response"
	"yatube-backend/internal/shared/utils"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /posts/:id/comment/.
// Invalid comments are dropped without feedback; the viewer always lands back on the post.
func (h *CommentHandler) Create(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.NotFoundPage(c)
		return
	}

	form := model.CommentForm{Text: c.PostForm("text")}
	_, err := h.service.Create(c.Request.Context(), auth.ViewerFrom(c), id, form)
	if err != nil {
		var ferr *model.FormError
		if !errors.As(err, &ferr) {
			handleError(c, err)
			return
		}
		log.Debug().Int64("post_id", id).Err(err).Msg("comment rejected")
	}

	c.Redirect(http.StatusFound, postURL(id))
}
