package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	infraCache "yatube-backend/internal/infrastructure/cache"
	"yatube-backend/internal/shared/auth"
)

// CacheHeader reports whether a response came from the page cache.
const CacheHeader = "X-Cache"

// CacheObserver is notified about every page cache lookup.
type CacheObserver interface {
	CacheHit(prefix string)
	CacheMiss(prefix string)
}

// CachePage serves GET responses from store for ttl.
// The key is the route path; the query string is ignored, so every page number
// of a feed shares one entry until it expires. Authenticated viewers get their own
// variant because the layout shows who is signed in. Writes never invalidate an entry.
func CachePage(store infraCache.PageStore, ttl time.Duration, prefix string, observers ...CacheObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := PageCacheKey(prefix, c.Request.URL.Path, auth.ViewerFrom(c))

		page, found, err := store.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("page cache lookup failed")
		}
		if found {
			for _, o := range observers {
				o.CacheHit(prefix)
			}
			c.Header(CacheHeader, "HIT")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		for _, o := range observers {
			o.CacheMiss(prefix)
		}
		c.Header(CacheHeader, "MISS")

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()
		c.Writer = recorder.ResponseWriter

		if recorder.Status() != http.StatusOK {
			return
		}

		err = store.Set(ctx, key, &infraCache.CachedPage{
			Status:      recorder.Status(),
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}, ttl)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("page cache store failed")
		}
	}
}

// PageCacheKey builds "page:<prefix>:<path>" with a per-user suffix for signed-in viewers.
func PageCacheKey(prefix, path string, viewer auth.Viewer) string {
	key := infraCache.PageKeyPrefix + prefix + ":" + path
	if viewer.IsAuthenticated() {
		key += ":u:" + viewer.UserID.String()
	}
	return key
}

// bodyRecorder tees the response body so it can be cached after the handler ran.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
