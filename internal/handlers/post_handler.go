package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/views"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
	images            storage.ImageStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(repos repositories.Repositories, images storage.ImageStore) *PostHandler {
	return &PostHandler{
		postRepository:    repos.Posts,
		groupRepository:   repos.Groups,
		commentRepository: repos.Comments,
		images:            images,
	}
}

// RegisterPostRoutes registers post routes; create and edit go through auth
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/posts/:id/", h.PostDetail)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.PostCreate, auth)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:id/edit/", h.PostEdit, auth)
}

// PostDetail shows a post with its comments
func (h *PostHandler) PostDetail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return lookupError(err, "post")
	}

	count, err := h.postRepository.CountPosts(ctx, repositories.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return fmt.Errorf("count author posts: %w", err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}

	return render(c, http.StatusOK, "posts/post_detail.html", views.Data{
		"Post":       post,
		"PostsCount": count,
		"Comments":   comments,
		"Form":       &forms.CommentForm{},
	})
}

// PostCreate shows the new post form and saves valid submissions
func (h *PostHandler) PostCreate(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	groups, err := h.groupRepository.GetGroups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	form := &forms.PostForm{}
	if c.Request().Method != http.MethodPost {
		return h.renderForm(c, form, nil, groups, nil)
	}

	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	image := formFile(c, "image")
	if errs := form.Clean(c.Echo().Validator, groups, image); errs.Any() {
		return h.renderForm(c, form, errs, groups, nil)
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  form.GroupID(),
	}
	if image != nil {
		if post.Image, err = h.images.Save(ctx, image); err != nil {
			return fmt.Errorf("store image: %w", err)
		}
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		h.discardImage(ctx, post.Image)
		return fmt.Errorf("create post: %w", err)
	}
	logging.Info().Uint("post_id", post.ID).Str("author", user.Username).Msg("post created")

	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// PostEdit lets the author change the text, group and image of a post.
// Anyone else is sent back to the post.
func (h *PostHandler) PostEdit(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user := currentUser(c)

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return lookupError(err, "post")
	}
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)
	if post.AuthorID != user.ID {
		return c.Redirect(http.StatusFound, detailURL)
	}

	groups, err := h.groupRepository.GetGroups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	form := forms.NewPostForm(post)
	if c.Request().Method != http.MethodPost {
		return h.renderForm(c, &form, nil, groups, post)
	}

	form = forms.PostForm{}
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	image := formFile(c, "image")
	if errs := form.Clean(c.Echo().Validator, groups, image); errs.Any() {
		return h.renderForm(c, &form, errs, groups, post)
	}

	oldImage := post.Image
	switch {
	case image != nil:
		if post.Image, err = h.images.Save(ctx, image); err != nil {
			return fmt.Errorf("store image: %w", err)
		}
	case form.ClearImage():
		post.Image = ""
	}
	post.Text = form.Text
	post.GroupID = form.GroupID()

	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			h.discardImage(ctx, post.Image)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return lookupError(err, "post")
		}
		return fmt.Errorf("update post: %w", err)
	}

	if oldImage != post.Image {
		h.discardImage(ctx, oldImage)
	}

	return c.Redirect(http.StatusFound, detailURL)
}

// discardImage removes a stored image no post points at. Failures only
// leave an orphaned object behind, so they are logged.
func (h *PostHandler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}

func (h *PostHandler) renderForm(c echo.Context, form *forms.PostForm, errs forms.Errors, groups []models.Group, post *models.Post) error {
	return render(c, http.StatusOK, "posts/post_create.html", views.Data{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": post != nil,
		"Post":   post,
	})
}

// formFile returns the uploaded file under name, nil when none was sent.
func formFile(c echo.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil || fh.Filename == "" {
		return nil
	}
	return fh
}
