package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/domains/user"
	"yatube-backend/internal/shared/middleware"
	"yatube-backend/internal/shared/response"
)

const (
	pageSignup = "signup.html"
	pageLogin  = "login.html"
)

// UserHandler serves the sign up, sign in and sign out pages
type UserHandler struct {
	service      user.Service
	cookieSecure bool
}

func NewUserHandler(service user.Service, cookieSecure bool) *UserHandler {
	return &UserHandler{
		service:      service,
		cookieSecure: cookieSecure,
	}
}

// ShowSignup handles GET /auth/signup/
func (h *UserHandler) ShowSignup(c *gin.Context) {
	response.Render(c, http.StatusOK, pageSignup, gin.H{
		"Form":   user.SignupRequest{},
		"Errors": map[string]string{},
	})
}

// Signup handles POST /auth/signup/
func (h *UserHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Render(c, http.StatusOK, pageSignup, gin.H{
			"Form":   req,
			"Errors": map[string]string{"__all__": "could not read the form"},
		})
		return
	}

	res, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		fields, ok := response.FieldErrors(err)
		switch {
		case ok:
		case errors.Is(err, user.ErrUsernameTaken):
			fields = map[string]string{"username": "A user with that username already exists."}
		case errors.Is(err, user.ErrEmailAlreadyExists):
			fields = map[string]string{"email": "A user with that email already exists."}
		default:
			h.handleError(c, err)
			return
		}
		req.Password, req.PasswordConfirm = "", ""
		response.Render(c, http.StatusOK, pageSignup, gin.H{"Form": req, "Errors": fields})
		return
	}

	h.setAccessToken(c, res)
	c.Redirect(http.StatusFound, "/")
}

// ShowLogin handles GET /auth/login/
func (h *UserHandler) ShowLogin(c *gin.Context) {
	response.Render(c, http.StatusOK, pageLogin, gin.H{
		"Form":   user.LoginRequest{},
		"Next":   c.Query("next"),
		"Errors": map[string]string{},
	})
}

// Login handles POST /auth/login/
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	_ = c.ShouldBind(&req)
	next := c.PostForm("next")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		fields, ok := response.FieldErrors(err)
		switch {
		case ok:
		case errors.Is(err, user.ErrInvalidCredentials):
			fields = map[string]string{"__all__": "Please enter a correct username and password."}
		default:
			h.handleError(c, err)
			return
		}
		req.Password = ""
		response.Render(c, http.StatusOK, pageLogin, gin.H{"Form": req, "Next": next, "Errors": fields})
		return
	}

	h.setAccessToken(c, res)
	c.Redirect(http.StatusFound, SafeRedirect(next))
}

// Logout handles GET /auth/logout/
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) setAccessToken(c *gin.Context, res *user.LoginResult) {
	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, res.AccessToken, maxAge, "/", "", h.cookieSecure, true)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("auth request failed")
	response.ServerErrorPage(c)
}

// SafeRedirect only follows local absolute paths.
// Anything a browser could read as another origin falls back to "/".
func SafeRedirect(next string) string {
	if !isLocalPath(next) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || !isLocalPath(u.Path) {
		return "/"
	}
	return next
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 0x20 || p[i] == 0x7f {
			return false
		}
	}
	return true
}
