package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// LoginRequired redirects anonymous visitors to loginURL, passing the
// requested path as the "next" parameter.
func LoginRequired(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			return c.Redirect(http.StatusFound, LoginRedirectURL(loginURL, c.Request().URL.RequestURI()))
		}
	}
}

// LoginRedirectURL builds loginURL?next=path keeping slashes readable.
func LoginRedirectURL(loginURL, path string) string {
	next := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
	return loginURL + "?next=" + next
}
