package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
)

// CommentHandler handles comment submissions
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(repos repositories.Repositories) *CommentHandler {
	return &CommentHandler{
		commentRepository: repos.Comments,
		postRepository:    repos.Posts,
	}
}

// RegisterCommentRoutes registers comment routes behind auth
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:id/comment/", h.AddComment, auth)
}

// AddComment stores a valid comment on a post and always returns to the
// post. Invalid submissions are dropped silently.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return lookupError(err, "post")
	}
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	form := &forms.CommentForm{}
	if c.Request().Method == http.MethodPost {
		if err := c.Bind(form); err != nil {
			return c.Redirect(http.StatusFound, detailURL)
		}
	}
	if errs := form.Clean(c.Echo().Validator); errs.Any() {
		return c.Redirect(http.StatusFound, detailURL)
	}

	comment := &models.Comment{
		Text:     form.Text,
		PostID:   post.ID,
		AuthorID: currentUser(c).ID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return c.Redirect(http.StatusFound, detailURL)
}
