package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	infraCache "yatube-backend/internal/infrastructure/cache"
	"yatube-backend/internal/shared/auth"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit(string)  { o.hits++ }
func (o *countingObserver) CacheMiss(string) { o.misses++ }

func newCachedRouter(store infraCache.PageStore, status *int, counter *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", CachePage(store, 20*time.Second, "index_page"), func(c *gin.Context) {
		*counter++
		c.String(*status, "render "+strconv.Itoa(*counter))
	})
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestCachePage_ServesCachedBodyUntilExpiry(t *testing.T) {
	now := time.Now()
	store := infraCache.NewMemoryPageStoreWithClock(func() time.Time { return now })
	status, renders := http.StatusOK, 0
	r := newCachedRouter(store, &status, &renders)

	first := get(r, "/")
	assert.Equal(t, "render 1", first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))

	now = now.Add(19 * time.Second)
	second := get(r, "/")
	assert.Equal(t, "render 1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, 1, renders)

	now = now.Add(2 * time.Second)
	third := get(r, "/")
	assert.Equal(t, "render 2", third.Body.String())
	assert.Equal(t, "MISS", third.Header().Get(CacheHeader))
}

func TestCachePage_IgnoresQueryString(t *testing.T) {
	store := infraCache.NewMemoryPageStore()
	status, renders := http.StatusOK, 0
	r := newCachedRouter(store, &status, &renders)

	get(r, "/?page=1")
	w := get(r, "/?page=2")

	assert.Equal(t, "render 1", w.Body.String())
	assert.Equal(t, 1, renders)
}

func TestCachePage_SkipsNonOKResponses(t *testing.T) {
	store := infraCache.NewMemoryPageStore()
	status, renders := http.StatusInternalServerError, 0
	r := newCachedRouter(store, &status, &renders)

	get(r, "/")
	get(r, "/")

	assert.Equal(t, 2, renders)
	assert.Equal(t, 0, store.Len())
}

func TestCachePage_ClearExposesFreshContent(t *testing.T) {
	store := infraCache.NewMemoryPageStore()
	status, renders := http.StatusOK, 0
	r := newCachedRouter(store, &status, &renders)

	get(r, "/")
	assert.NoError(t, store.Clear(httptest.NewRequest(http.MethodGet, "/", nil).Context()))

	assert.Equal(t, "render 2", get(r, "/").Body.String())
}

func TestCachePage_NotifiesObservers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &countingObserver{}
	r := gin.New()
	r.GET("/", CachePage(infraCache.NewMemoryPageStore(), time.Minute, "index_page", obs), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	get(r, "/")
	get(r, "/")
	get(r, "/")

	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 2, obs.hits)
}

func TestPageCacheKey(t *testing.T) {
	assert.Equal(t, "page:index_page:/", PageCacheKey("index_page", "/", auth.Viewer{}))

	id := uuid.New()
	assert.Equal(t,
		"page:index_page:/:u:"+id.String(),
		PageCacheKey("index_page", "/", auth.Viewer{UserID: id, Username: "leo"}),
	)
}
