package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-backend/internal/shared/auth"
	"yatube-backend/pkg/jwt"
)

func newAuthRouter(m *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuth(m))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, auth.ViewerFrom(c).Username)
	})
	r.GET("/create/", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "form")
	})
	r.GET("/api/v1/admin/groups", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "groups")
	})
	return r
}

func TestOptionalAuth_ReadsCookieAndBearer(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	token, err := m.GenerateAccessToken(uuid.NewString(), "leo", auth.RoleUser)
	require.NoError(t, err)
	r := newAuthRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "leo", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "leo", w.Body.String())
}

func TestOptionalAuth_InvalidTokenStaysAnonymous(t *testing.T) {
	r := newAuthRouter(jwt.NewManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequireAuth_RedirectsAnonymousToLogin(t *testing.T) {
	r := newAuthRouter(jwt.NewManager("secret", time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
}

func TestRequireAdmin(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	r := newAuthRouter(m)

	userToken, err := m.GenerateAccessToken(uuid.NewString(), "leo", auth.RoleUser)
	require.NoError(t, err)
	adminToken, err := m.GenerateAccessToken(uuid.NewString(), "root", auth.RoleAdmin)
	require.NoError(t, err)

	cases := map[string]int{
		"":         http.StatusUnauthorized,
		userToken:  http.StatusForbidden,
		adminToken: http.StatusOK,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/groups", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, LoginPath, LoginURL(""))
	assert.Equal(t, "/auth/login/?next=%2Fposts%2F3%2Fedit%2F", LoginURL("/posts/3/edit/"))
}
