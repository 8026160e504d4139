package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/shared/middleware"
	"yatube-backend/internal/shared/response"
)

// handleError maps domain errors onto the HTML error pages.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound),
		errors.Is(err, model.ErrGroupNotFound),
		errors.Is(err, model.ErrAuthorNotFound):
		response.NotFoundPage(c)
	case errors.Is(err, model.ErrViewerNotFound):
		log.Warn().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Msg("token of a removed account, expiring session")
		middleware.ExpireSession(c)
	case errors.Is(err, model.ErrSelfFollow),
		errors.Is(err, model.ErrAlreadyFollowing):
		response.ForbiddenPage(c)
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		response.ServerErrorPage(c)
	}
}
