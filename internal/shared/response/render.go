package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube-backend/internal/shared/auth"
)

// HTML page names shared by every domain.
const (
	PageForbidden   = "403.html"
	PageNotFound    = "404.html"
	PageServerError = "500.html"
)

// Render writes an HTML template, exposing the current viewer as .Viewer.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Viewer"]; !ok {
		data["Viewer"] = auth.ViewerFrom(c)
	}
	c.HTML(status, name, data)
}

func NotFoundPage(c *gin.Context) {
	if IsAPIRequest(c) {
		NotFound(c, "resource not found")
		return
	}
	Render(c, http.StatusNotFound, PageNotFound, gin.H{"Path": c.Request.URL.Path})
}

func ForbiddenPage(c *gin.Context) {
	Render(c, http.StatusForbidden, PageForbidden, nil)
}

func ServerErrorPage(c *gin.Context) {
	if IsAPIRequest(c) {
		InternalServerError(c, "Internal server error")
		return
	}
	Render(c, http.StatusInternalServerError, PageServerError, nil)
}

// IsAPIRequest reports whether the client expects the JSON envelope.
func IsAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
