package middleware

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/cache"
)

// CachePage serves GET responses from store. Successful responses are kept
// for the store's TTL, keyed by URI and session so a page rendered for one
// visitor is never shown to another.
func CachePage(store *cache.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			key := pageKey(c)
			if entry, ok := store.Get(key); ok {
				for name, value := range entry.Header {
					c.Response().Header().Set(name, value)
				}
				return c.Blob(entry.Status, entry.Header[echo.HeaderContentType], entry.Data)
			}

			res := c.Response()
			rec := &bodyRecorder{ResponseWriter: res.Writer, status: http.StatusOK}
			res.Writer = rec
			err := next(c)
			res.Writer = rec.ResponseWriter

			if err == nil && rec.status == http.StatusOK {
				store.Set(key, cache.Entry{
					Data:   rec.body.Bytes(),
					Status: rec.status,
					Header: map[string]string{
						echo.HeaderContentType: res.Header().Get(echo.HeaderContentType),
					},
				})
			}
			return err
		}
	}
}

func pageKey(c echo.Context) string {
	key := c.Request().URL.RequestURI()
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		key += "|" + cookie.Value
	}
	return key
}

// bodyRecorder tees the response body into a buffer.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
