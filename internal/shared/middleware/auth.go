package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/shared/auth"
	"yatube-backend/internal/shared/response"
	"yatube-backend/internal/shared/utils"
	"yatube-backend/pkg/jwt"
)

// AccessTokenCookie holds the signed access token for browser sessions.
const AccessTokenCookie = "access_token"

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/auth/login/"

// OptionalAuth resolves the access token, if any, into an auth.Viewer.
// Missing or invalid tokens leave the request anonymous.
func OptionalAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("ignoring invalid access token")
			c.Next()
			return
		}

		userID := utils.ParseStringToUUID(claims.UserID)
		if userID == uuid.Nil {
			c.Next()
			return
		}

		auth.SetViewer(c, auth.Viewer{
			UserID:   userID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// RequireAuth redirects anonymous visitors to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.ViewerFrom(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the JSON admin API.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := auth.ViewerFrom(c)
		if !viewer.IsAuthenticated() {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if !viewer.IsAdmin() {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL builds the login redirect carrying the page to come back to.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// ExpireSession drops the access cookie and sends the visitor to log in again.
// Used when a valid token points at an account that is gone.
func ExpireSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
