package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(repos repositories.Repositories) *FollowHandler {
	return &FollowHandler{
		followRepository: repos.Follows,
		userRepository:   repos.Users,
	}
}

// RegisterFollowRoutes registers follow routes behind auth
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/follow/", h.ProfileFollow, auth)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/unfollow/", h.ProfileUnfollow, auth)
}

// ProfileFollow subscribes the current user to an author. Following
// yourself or someone you already follow changes nothing.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "user")
	}
	profileURL := "/profile/" + author.Username + "/"

	if user.ID == author.ID {
		return c.Redirect(http.StatusFound, profileURL)
	}

	following, err := h.followRepository.IsFollowing(ctx, user.ID, author.ID)
	if err != nil {
		return fmt.Errorf("check follow: %w", err)
	}
	if following {
		return c.Redirect(http.StatusFound, profileURL)
	}

	err = h.followRepository.CreateFollow(ctx, &models.Follow{UserID: user.ID, AuthorID: author.ID})
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		// a concurrent request created the edge first
	case err != nil:
		return fmt.Errorf("create follow: %w", err)
	default:
		logging.Info().Str("user", user.Username).Str("author", author.Username).Msg("follow created")
	}

	return c.Redirect(http.StatusFound, profileURL)
}

// ProfileUnfollow removes the current user's subscription to an author
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "user")
	}

	follow, err := h.followRepository.GetFollow(ctx, user.ID, author.ID)
	if err != nil {
		return lookupError(err, "follow")
	}
	if err := h.followRepository.DeleteFollow(ctx, follow.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("delete follow: %w", err)
	}

	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}
