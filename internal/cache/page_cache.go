// Package cache provides whole-page caching for the feed views.
//
// Entries are keyed by view identity (path plus page number, plus viewer on
// authenticated feeds), never by data state: a post written during the TTL
// window stays invisible on cached views until the entry expires or the
// cache is cleared.
package cache

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/inkwellhq/inkwell/internal/monitoring"
)

// PageCache memoizes rendered response bodies for a fixed TTL.
type PageCache struct {
	ttl     time.Duration
	entries *gocache.Cache
}

type entry struct {
	body        []byte
	contentType string
}

// New creates a PageCache whose entries live for ttl.
func New(ttl time.Duration) *PageCache {
	return &PageCache{
		ttl:     ttl,
		entries: gocache.New(ttl, 2*ttl),
	}
}

// TTL returns the configured entry lifetime.
func (p *PageCache) TTL() time.Duration {
	return p.ttl
}

// Get returns the cached body and content type for key, or ok=false on miss.
func (p *PageCache) Get(key string) ([]byte, string, bool) {
	v, ok := p.entries.Get(key)
	if !ok {
		return nil, "", false
	}
	e := v.(entry)
	return e.body, e.contentType, true
}

// Put stores a rendered body under key for the configured TTL.
func (p *PageCache) Put(key string, body []byte, contentType string) {
	p.entries.Set(key, entry{body: body, contentType: contentType}, p.ttl)
}

// Clear drops every entry at once.
func (p *PageCache) Clear() {
	p.entries.Flush()
}

// Key builds the cache key for a request: path and page number, plus the
// viewer id when the view differs per user (the followed feed).
func Key(c echo.Context, viewerID uint) string {
	key := c.Request().URL.Path + "?page=" + c.QueryParam("page")
	if viewerID != 0 {
		key += fmt.Sprintf("|uid=%d", viewerID)
	}
	return key
}

// bodyCapture tees the response body so a 200 render can be stored.
type bodyCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// ViewerKeyFunc extracts the viewer id a cached view is keyed by; return 0
// for views shared by all users.
type ViewerKeyFunc func(c echo.Context) uint

// Middleware serves GET responses from the cache and captures misses.
func Middleware(store *PageCache, viewer ViewerKeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			var viewerID uint
			if viewer != nil {
				viewerID = viewer(c)
			}
			key := Key(c, viewerID)

			if body, contentType, ok := store.Get(key); ok {
				monitoring.PageCacheHits.Inc()
				return c.Blob(http.StatusOK, contentType, body)
			}
			monitoring.PageCacheMisses.Inc()

			capture := &bodyCapture{ResponseWriter: c.Response().Writer}
			c.Response().Writer = capture

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status == http.StatusOK {
				store.Put(key, capture.buf.Bytes(), c.Response().Header().Get(echo.HeaderContentType))
			}
			return nil
		}
	}
}
