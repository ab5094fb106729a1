package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
)

// FeedHandler handles the paginated post listings
type FeedHandler struct {
	postRepository   repositories.PostRepository
	groupRepository  repositories.GroupRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	perPage          int
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(repos repositories.Repositories, perPage int) *FeedHandler {
	return &FeedHandler{
		postRepository:   repos.Posts,
		groupRepository:  repos.Groups,
		userRepository:   repos.Users,
		followRepository: repos.Follows,
		perPage:          perPage,
	}
}

// RegisterFeedRoutes registers feed routes. The index goes through
// cachePage, the follow feed through auth.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, cachePage, auth echo.MiddlewareFunc) {
	g.GET("/", h.Index, cachePage)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/profile/:username/", h.Profile)
	g.GET("/follow/", h.FollowIndex, auth)
}

// Index lists every post, newest first
func (h *FeedHandler) Index(c echo.Context) error {
	posts, page, err := listPage(c, h.postRepository, repositories.PostFilter{}, h.perPage)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "posts/index.html", views.Data{
		"Posts": posts,
		"Page":  page,
		"Index": true,
	})
}

// GroupPosts lists the posts of one group
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return lookupError(err, "group")
	}

	posts, page, err := listPage(c, h.postRepository, repositories.PostFilter{GroupID: &group.ID}, h.perPage)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "posts/group_list.html", views.Data{
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

// Profile lists the posts of one author
func (h *FeedHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return lookupError(err, "user")
	}

	following := false
	if viewerID := getUserIDFromContext(c); viewerID != 0 {
		following, err = h.followRepository.IsFollowing(ctx, viewerID, author.ID)
		if err != nil {
			return err
		}
	}

	posts, page, err := listPage(c, h.postRepository, repositories.PostFilter{AuthorID: &author.ID}, h.perPage)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "posts/profile.html", views.Data{
		"Author":     author,
		"Posts":      posts,
		"Page":       page,
		"PostsCount": page.Total,
		"Following":  following,
	})
}

// FollowIndex lists the posts of the authors the current user follows
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	viewerID := getUserIDFromContext(c)

	posts, page, err := listPage(c, h.postRepository, repositories.PostFilter{FollowerID: &viewerID}, h.perPage)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "posts/follow.html", views.Data{
		"Posts":  posts,
		"Page":   page,
		"Follow": true,
	})
}
