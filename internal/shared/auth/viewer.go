package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const viewerKey = "viewer"

// Viewer is the identity behind the current request.
// The zero value is the anonymous visitor.
type Viewer struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

func (v Viewer) IsAuthenticated() bool {
	return v.UserID != uuid.Nil
}

func (v Viewer) IsAdmin() bool {
	return v.IsAuthenticated() && v.Role == RoleAdmin
}

// Is reports whether the viewer is the given user.
func (v Viewer) Is(userID uuid.UUID) bool {
	return v.IsAuthenticated() && v.UserID == userID
}

// SetViewer attaches the viewer to the request context.
func SetViewer(c *gin.Context, v Viewer) {
	c.Set(viewerKey, v)
}

// ViewerFrom returns the request viewer, anonymous when none was attached.
func ViewerFrom(c *gin.Context) Viewer {
	if raw, ok := c.Get(viewerKey); ok {
		if v, ok := raw.(Viewer); ok {
			return v
		}
	}
	return Viewer{}
}
