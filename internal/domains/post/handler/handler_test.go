package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/posttest"
	"yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/domains/user"
	infraCache "yatube-backend/internal/infrastructure/cache"
	"yatube-backend/internal/infrastructure/storage"
	"yatube-backend/internal/shared/middleware"
	"yatube-backend/internal/shared/response"
	"yatube-backend/pkg/jwt"
	"yatube-backend/web"
)

type testApp struct {
	store   *posttest.Store
	objects *posttest.Objects
	pages   *infraCache.MemoryPageStore
	jwt     *jwt.Manager
	router  *gin.Engine
	now     time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		store:   posttest.NewStore(),
		objects: posttest.NewObjects(),
		jwt:     jwt.NewManager("test-secret", time.Hour),
		now:     time.Now(),
	}
	app.pages = infraCache.NewMemoryPageStoreWithClock(func() time.Time { return app.now })

	processor := storage.NewImageProcessor()
	images := service.NewImageService(app.store.Images(), app.objects, &posttest.Queue{}, processor)
	postHandler := NewPostHandler(service.NewPostService(
		app.store.Posts(), app.store.Groups(), app.store.Comments(), app.store.Follows(),
		app.store.Users, images, processor,
	))
	commentHandler := NewCommentHandler(service.NewCommentService(app.store.Posts(), app.store.Comments()))
	followHandler := NewFollowHandler(service.NewFollowService(app.store.Follows(), app.store.Users))
	groupHandler := NewGroupHandler(service.NewGroupService(app.store.Groups()))
	cacheHandler := NewCacheHandler(app.pages)

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	r.Use(middleware.OptionalAuth(app.jwt))

	r.GET("/", middleware.CachePage(app.pages, model.IndexCacheTTL, model.IndexCachePrefix), postHandler.Index)
	r.GET("/group/:slug/", postHandler.GroupPosts)
	r.GET("/profile/:username/", postHandler.Profile)
	r.GET("/posts/:id/", postHandler.PostDetail)

	authed := r.Group("/", middleware.RequireAuth())
	authed.GET("/follow/", postHandler.FollowIndex)
	authed.GET("/create/", postHandler.CreateForm)
	authed.POST("/create/", postHandler.Create)
	authed.GET("/posts/:id/edit/", postHandler.EditForm)
	authed.POST("/posts/:id/edit/", postHandler.Edit)
	authed.POST("/posts/:id/comment/", commentHandler.Create)
	authed.GET("/profile/:username/follow/", followHandler.Follow)
	authed.GET("/profile/:username/unfollow/", followHandler.Unfollow)

	admin := r.Group("/api/v1/admin", middleware.RequireAdmin())
	admin.POST("/groups", groupHandler.Create)
	admin.GET("/groups", groupHandler.List)
	admin.DELETE("/groups/:slug", groupHandler.Delete)
	admin.POST("/cache/clear", cacheHandler.Clear)

	r.NoRoute(response.NotFoundPage)

	app.router = r
	return app
}

func (a *testApp) token(t *testing.T, u *user.User) string {
	t.Helper()
	tok, err := a.jwt.GenerateAccessToken(u.ID.String(), u.Username, string(u.Role))
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, target string, as *user.User, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if as != nil {
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: a.token(t, as)})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func postPath(id int64, suffix string) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func TestIndex_PaginatesThirteenPosts(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	for i := 0; i < 13; i++ {
		app.store.AddPost(leo.ID, "post-"+strconv.Itoa(i)+"-body", nil)
	}

	first := app.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 10, strings.Count(first.Body.String(), `class="post"`))
	assert.Contains(t, first.Body.String(), "Page 1 of 2")

	require.NoError(t, app.pages.Clear(context.Background()))
	second := app.do(t, http.MethodGet, "/?page=2", nil, nil)
	assert.Equal(t, 3, strings.Count(second.Body.String(), `class="post"`))
	assert.Contains(t, second.Body.String(), "Page 2 of 2")
}

func TestIndex_CachedUntilExpiryOrClear(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	app.store.AddPost(leo.ID, "post A", nil)

	r1 := app.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, r1.Code)
	assert.Contains(t, r1.Body.String(), "post A")

	app.store.AddPost(leo.ID, "post B", nil)
	app.now = app.now.Add(10 * time.Second)

	r2 := app.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, r1.Body.String(), r2.Body.String())
	assert.NotContains(t, r2.Body.String(), "post B")
	assert.Equal(t, "HIT", r2.Header().Get(middleware.CacheHeader))

	require.NoError(t, app.pages.Clear(context.Background()))
	r3 := app.do(t, http.MethodGet, "/", nil, nil)
	assert.Contains(t, r3.Body.String(), "post B")
}

func TestIndex_CacheExpiresAfterTTL(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	app.do(t, http.MethodGet, "/", nil, nil)

	app.store.AddPost(leo.ID, "late post", nil)
	app.now = app.now.Add(model.IndexCacheTTL + time.Second)

	assert.Contains(t, app.do(t, http.MethodGet, "/", nil, nil).Body.String(), "late post")
}

func TestAdminCacheClear(t *testing.T) {
	app := newTestApp(t)
	admin := app.store.Users.Add("root")
	admin.Role = user.RoleAdmin
	app.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, 1, app.pages.Len())

	w := app.do(t, http.MethodPost, "/api/v1/admin/cache/clear", admin, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.pages.Len())
}

func TestGroupPosts(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	cats := app.store.AddGroup("Cats", "cats")
	app.store.AddPost(leo.ID, "meow meow", cats)
	app.store.AddPost(leo.ID, "not in group", nil)

	w := app.do(t, http.MethodGet, "/group/cats/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meow meow")
	assert.NotContains(t, w.Body.String(), "not in group")

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/group/dogs/", nil, nil).Code)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	ann := app.store.Users.Add("ann")
	app.store.AddPost(leo.ID, "by leo", nil)

	w := app.do(t, http.MethodGet, "/profile/leo/", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Posts: 1")
	assert.Contains(t, w.Body.String(), "/profile/leo/follow/")

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/profile/ghost/", nil, nil).Code)
}

func TestPostDetail(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	post := app.store.AddPost(leo.ID, "hello world", nil)

	anon := app.do(t, http.MethodGet, postPath(post.ID, ""), nil, nil)
	require.Equal(t, http.StatusOK, anon.Code)
	assert.Contains(t, anon.Body.String(), "hello world")
	assert.NotContains(t, anon.Body.String(), "/comment/")

	signedIn := app.do(t, http.MethodGet, postPath(post.ID, ""), leo, nil)
	assert.Contains(t, signedIn.Body.String(), "/comment/")
	assert.Contains(t, signedIn.Body.String(), "/edit/")

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/posts/999/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/posts/abc/", nil, nil).Code)
}

func TestCreate_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/create/", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
}

func TestCreate_ValidPostRedirectsToProfile(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")

	w := app.do(t, http.MethodPost, "/create/", leo, url.Values{"text": {"fresh post"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, 1, app.store.PostCount())
}

func TestCreate_TooLongTextRerendersForm(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	long := strings.Repeat("x", 201)

	w := app.do(t, http.MethodPost, "/create/", leo, url.Values{"text": {long}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Post text must not exceed 200 characters")
	assert.Contains(t, w.Body.String(), long)
	assert.Equal(t, 0, app.store.PostCount())
}

func TestCreate_WithImageUpload(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")

	body, contentType := posttest.MultipartBody(map[string]string{"text": "pic"}, "cat.png", posttest.PNG(20, 20))
	req := httptest.NewRequest(http.MethodPost, "/create/", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: app.token(t, leo)})
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Len(t, app.objects.Keys(), 1)
}

func TestEdit_NonAuthorIsRedirectedWithoutChanges(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	mallory := app.store.Users.Add("mallory")
	post := app.store.AddPost(leo.ID, "original", nil)

	get := app.do(t, http.MethodGet, postPath(post.ID, "edit/"), mallory, nil)
	assert.Equal(t, http.StatusFound, get.Code)
	assert.Equal(t, postPath(post.ID, ""), get.Header().Get("Location"))

	w := app.do(t, http.MethodPost, postPath(post.ID, "edit/"), mallory, url.Values{"text": {"hijacked"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post.ID, ""), w.Header().Get("Location"))

	stored, err := app.store.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)
}

func TestEdit_AuthorUpdatesPost(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	post := app.store.AddPost(leo.ID, "original", nil)

	form := app.do(t, http.MethodGet, postPath(post.ID, "edit/"), leo, nil)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), "original")
	assert.Contains(t, form.Body.String(), "Edit post")

	invalid := app.do(t, http.MethodPost, postPath(post.ID, "edit/"), leo, url.Values{"text": {""}})
	assert.Equal(t, http.StatusOK, invalid.Code)
	assert.Contains(t, invalid.Body.String(), "Edit post")

	w := app.do(t, http.MethodPost, postPath(post.ID, "edit/"), leo, url.Values{"text": {"updated"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post.ID, ""), w.Header().Get("Location"))

	stored, err := app.store.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", stored.Text)
}

func TestComment_AnonymousNeverCreatesComment(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	post := app.store.AddPost(leo.ID, "hello", nil)

	w := app.do(t, http.MethodPost, postPath(post.ID, "comment/"), nil, url.Values{"text": {"spam"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), middleware.LoginPath))
	assert.Equal(t, 0, app.store.CommentCount())
}

func TestComment_AlwaysRedirectsToPost(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	post := app.store.AddPost(leo.ID, "hello", nil)

	invalid := app.do(t, http.MethodPost, postPath(post.ID, "comment/"), leo, url.Values{"text": {""}})
	assert.Equal(t, http.StatusFound, invalid.Code)
	assert.Equal(t, postPath(post.ID, ""), invalid.Header().Get("Location"))
	assert.Equal(t, 0, app.store.CommentCount())

	valid := app.do(t, http.MethodPost, postPath(post.ID, "comment/"), leo, url.Values{"text": {"nice"}})
	assert.Equal(t, http.StatusFound, valid.Code)
	assert.Equal(t, 1, app.store.CommentCount())

	assert.Equal(t, http.StatusNotFound,
		app.do(t, http.MethodPost, "/posts/999/comment/", leo, url.Values{"text": {"x"}}).Code)
}

func TestFollow(t *testing.T) {
	app := newTestApp(t)
	app.store.Users.Add("leo")
	ann := app.store.Users.Add("ann")

	self := app.do(t, http.MethodGet, "/profile/ann/follow/", ann, nil)
	assert.Equal(t, http.StatusForbidden, self.Code)
	assert.Equal(t, 0, app.store.FollowCount())

	first := app.do(t, http.MethodGet, "/profile/leo/follow/", ann, nil)
	assert.Equal(t, http.StatusFound, first.Code)
	assert.Equal(t, "/profile/leo/", first.Header().Get("Location"))

	dup := app.do(t, http.MethodGet, "/profile/leo/follow/", ann, nil)
	assert.Equal(t, http.StatusForbidden, dup.Code)
	assert.Equal(t, 1, app.store.FollowCount())

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/profile/ghost/follow/", ann, nil).Code)
}

func TestUnfollow_WithoutEdgeIsNoop(t *testing.T) {
	app := newTestApp(t)
	app.store.Users.Add("leo")
	ann := app.store.Users.Add("ann")

	w := app.do(t, http.MethodGet, "/profile/leo/unfollow/", ann, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, 0, app.store.FollowCount())
}

func TestFollowIndex(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	ann := app.store.Users.Add("ann")
	bob := app.store.Users.Add("bob")
	app.store.AddPost(leo.ID, "followed content", nil)
	app.store.AddPost(bob.ID, "unfollowed content", nil)
	app.do(t, http.MethodGet, "/profile/leo/follow/", ann, nil)

	w := app.do(t, http.MethodGet, "/follow/", ann, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "followed content")
	assert.NotContains(t, w.Body.String(), "unfollowed content")
}

func TestAdminGroups(t *testing.T) {
	app := newTestApp(t)
	admin := app.store.Users.Add("root")
	admin.Role = user.RoleAdmin
	leo := app.store.Users.Add("leo")

	req := func(method, target, body string, as *user.User) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		if as != nil {
			r.Header.Set("Authorization", "Bearer "+app.token(t, as))
		}
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusForbidden, req(http.MethodPost, "/api/v1/admin/groups", `{"title":"Cats"}`, leo).Code)

	created := req(http.MethodPost, "/api/v1/admin/groups", `{"title":"Cats"}`, admin)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Contains(t, created.Body.String(), `"slug":"cats"`)

	assert.Equal(t, http.StatusConflict, req(http.MethodPost, "/api/v1/admin/groups", `{"title":"Cats"}`, admin).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		req(http.MethodPost, "/api/v1/admin/groups", `{"title":"X","slug":"Bad Slug"}`, admin).Code)

	post := app.store.AddPost(leo.ID, "tagged", app.mustGroup(t, "cats"))
	assert.Equal(t, http.StatusOK, req(http.MethodDelete, "/api/v1/admin/groups/cats", "", admin).Code)
	assert.Equal(t, http.StatusNotFound, req(http.MethodDelete, "/api/v1/admin/groups/cats", "", admin).Code)

	detail := app.do(t, http.MethodGet, postPath(post.ID, ""), nil, nil)
	assert.Equal(t, http.StatusOK, detail.Code)
	assert.NotContains(t, detail.Body.String(), "/group/cats/")
}

func (a *testApp) mustGroup(t *testing.T, slug string) *model.Group {
	t.Helper()
	g, err := a.store.Groups().GetBySlug(context.Background(), slug)
	require.NoError(t, err)
	return g
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/nope/", nil, nil).Code)
}

func TestRemovedAccount_IsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	leo := app.store.Users.Add("leo")
	ann := app.store.Users.Add("ann")
	post := app.store.AddPost(leo.ID, "hello", nil)
	app.store.Users.Remove(ann.ID)

	assertExpired := func(w *httptest.ResponseRecorder, next string) {
		t.Helper()
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, middleware.LoginURL(next), w.Header().Get("Location"))
		assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.AccessTokenCookie+"=;")
	}

	assertExpired(app.do(t, http.MethodPost, "/create/", ann, url.Values{"text": {"ghost post"}}), "/create/")
	assert.Equal(t, 1, app.store.PostCount())

	assertExpired(app.do(t, http.MethodPost, postPath(post.ID, "comment/"), ann, url.Values{"text": {"boo"}}), postPath(post.ID, "comment/"))
	assert.Equal(t, 0, app.store.CommentCount())

	assertExpired(app.do(t, http.MethodGet, "/profile/leo/follow/", ann, nil), "/profile/leo/follow/")
	assert.Equal(t, 0, app.store.FollowCount())
}
