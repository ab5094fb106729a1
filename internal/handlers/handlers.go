// Package handlers implements the HTML pages and form actions of the site.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
)

// CSRFKey is the echo context key the CSRF middleware stores its token under.
const CSRFKey = "csrf"

// render executes page name with data plus the values the layout needs.
func render(c echo.Context, status int, name string, data views.Data) error {
	if data == nil {
		data = views.Data{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		data["User"] = user
	}
	if token, ok := c.Get(CSRFKey).(string); ok {
		data["CSRF"] = token
	}
	return c.Render(status, name, data)
}

// currentUser returns the authenticated user. Routes behind LoginRequired
// always have one.
func currentUser(c echo.Context) *models.User {
	return middleware.CurrentUser(c)
}

// getUserIDFromContext returns the current user's id, 0 for anonymous visitors.
func getUserIDFromContext(c echo.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// paramID parses a numeric path parameter. Anything that is not an id
// cannot name an object, so it is reported as not found.
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	return uint(id), nil
}

// lookupError maps a repository lookup failure onto an HTTP error.
func lookupError(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// listPage loads one page of the posts matching filter. The page number
// comes from the "page" query parameter and is clamped into range.
func listPage(c echo.Context, posts repositories.PostRepository, filter repositories.PostFilter, perPage int) ([]models.Post, pagination.Page, error) {
	ctx := c.Request().Context()

	total, err := posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("count posts: %w", err)
	}

	page := pagination.New(total, perPage).GetPage(c.QueryParam("page"))
	if total == 0 {
		return nil, page, nil
	}

	list, err := posts.ListPosts(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, page, fmt.Errorf("list posts: %w", err)
	}
	return list, page, nil
}
