package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/views"
)

// HTTPErrorHandler renders errors with the core error pages, falling back
// to plain text when no page can be rendered.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = http.StatusText(code)
		if m, ok := he.Message.(string); ok && code < 500 {
			message = m
		}
	}

	if code >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	name := "core/500.html"
	data := views.Data{"Code": code, "Message": message}
	if code == http.StatusNotFound {
		name = "core/404.html"
		data["Path"] = c.Request().URL.Path
	}
	if rerr := render(c, code, name, data); rerr != nil {
		_ = c.String(code, message)
	}
}
