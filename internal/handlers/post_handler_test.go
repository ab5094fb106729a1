package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/pkg/validators"
)

func TestPostCreate(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	group := app.createGroup(t, "Test group", "test-slug")

	before := time.Now()
	rec := app.postMultipart(t, "/create/", map[string]string{
		"text":  "Brand new post",
		"group": fmt.Sprint(group.ID),
	}, smallGIF, author)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/author/", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, int64(1), app.postCount(t))

	post := app.store.Posts()[0]
	assert.Equal(t, "Brand new post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
	assert.True(t, strings.HasPrefix(post.Image, "posts/"), post.Image)
	assert.False(t, post.Created.Before(before))
}

func TestPostCreateWithoutGroupOrImage(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")

	rec := app.postForm(t, "/create/", url.Values{"text": {"just text"}}, author)

	require.Equal(t, http.StatusFound, rec.Code)
	post := app.store.Posts()[0]
	assert.Nil(t, post.GroupID)
	assert.Empty(t, post.Image)
}

func TestPostCreateInvalidKeepsCount(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	app.createGroup(t, "Test group", "test-slug")

	tests := []struct {
		name    string
		fields  map[string]string
		image   []byte
		message string
	}{
		{name: "empty text", fields: map[string]string{"text": ""}, message: "This field is required."},
		{name: "blank text", fields: map[string]string{"text": "   "}, message: "This field is required."},
		{name: "unknown group", fields: map[string]string{"text": "ok", "group": "9999"}, message: "Select a valid choice."},
		{name: "not an image", fields: map[string]string{"text": "ok"}, image: []byte("definitely not a picture"), message: "Upload a valid image."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postMultipart(t, "/create/", tt.fields, tt.image, author)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Equal(t, int64(0), app.postCount(t))
		})
	}
}

func TestPostCreatePage(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	app.createGroup(t, "Test group", "test-slug")

	rec := app.get(t, "/create/", author)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/create/"`)
	assert.Contains(t, body, "Test group")
	assert.Contains(t, body, `name="text"`)
	assert.Contains(t, body, `name="image"`)
}

func TestProtectedPathsRedirectAnonymous(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author, "Test post", nil)

	paths := []string{
		"/create/",
		fmt.Sprintf("/posts/%d/edit/", post.ID),
		fmt.Sprintf("/posts/%d/comment/", post.ID),
		"/follow/",
		"/profile/author/follow/",
		"/profile/author/unfollow/",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := app.get(t, path, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/login/?next="+path, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestPostEditByAuthor(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	group := app.createGroup(t, "Test group", "test-slug")
	post := app.createPost(t, author, "Original text", nil)
	original, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)

	rec := app.get(t, fmt.Sprintf("/posts/%d/edit/", post.ID), author)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Original text")
	assert.Contains(t, rec.Body.String(), "Edit post")

	rec = app.postForm(t, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{
		"text":  {"Edited text"},
		"group": {fmt.Sprint(group.ID)},
	}, author)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get(echo.HeaderLocation))

	edited, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited text", edited.Text)
	require.NotNil(t, edited.GroupID)
	assert.Equal(t, group.ID, *edited.GroupID)
	assert.Equal(t, original.ID, edited.ID)
	assert.Equal(t, original.AuthorID, edited.AuthorID)
	assert.True(t, original.Created.Equal(edited.Created))
	assert.Equal(t, int64(1), app.postCount(t))
}

func TestPostEditImage(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author, "With image", nil)
	path := fmt.Sprintf("/posts/%d/edit/", post.ID)

	rec := app.postMultipart(t, path, map[string]string{"text": "With image"}, smallGIF, author)
	require.Equal(t, http.StatusFound, rec.Code)
	withImage, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.NotEmpty(t, withImage.Image)

	// no new file keeps the image
	rec = app.postMultipart(t, path, map[string]string{"text": "Still with image"}, nil, author)
	require.Equal(t, http.StatusFound, rec.Code)
	kept, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, withImage.Image, kept.Image)
	assert.Equal(t, "Still with image", kept.Text)

	rec = app.postMultipart(t, path, map[string]string{"text": "No image", "image-clear": "on"}, nil, author)
	require.Equal(t, http.StatusFound, rec.Code)
	cleared, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
}

// brokenPosts fails every write.
type brokenPosts struct {
	repositories.PostRepository
}

func (brokenPosts) CreatePost(context.Context, *models.Post) error { return assert.AnError }
func (brokenPosts) UpdatePost(context.Context, *models.Post) error { return assert.AnError }

func storedImages(t *testing.T, app *testApp) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(app.images.Root(), storage.ImagePrefix))
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestFailedSaveRemovesUploadedImage(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author, "With image", nil)

	rec := app.postMultipart(t, fmt.Sprintf("/posts/%d/edit/", post.ID), map[string]string{"text": "With image"}, smallGIF, author)
	require.Equal(t, http.StatusFound, rec.Code)
	existing := storedImages(t, app)
	require.Len(t, existing, 1)

	repos := app.repos
	repos.Posts = brokenPosts{app.repos.Posts}
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.Renderer = app.e.Renderer
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(app.sessions.Middleware())
	NewPostHandler(repos, app.images).RegisterPostRoutes(e.Group(""), middleware.LoginRequired("/auth/login/"))
	app.e = e

	rec = app.postMultipart(t, "/create/", map[string]string{"text": "Never saved"}, smallGIF, author)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, existing, storedImages(t, app))

	rec = app.postMultipart(t, fmt.Sprintf("/posts/%d/edit/", post.ID), map[string]string{"text": "Replaced"}, smallGIF, author)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, existing, storedImages(t, app))
}

func TestPostEditInvalidByAuthor(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author, "Original text", nil)

	rec := app.postForm(t, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {""}}, author)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")
	unchanged, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original text", unchanged.Text)
}

func TestPostEditByOtherUserRedirects(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	other := app.createUser(t, "another_user")
	post := app.createPost(t, author, "Original text", nil)
	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	tests := []struct {
		name string
		do   func() *http.Response
	}{
		{name: "get", do: func() *http.Response { return app.get(t, path, other).Result() }},
		{name: "invalid post", do: func() *http.Response {
			return app.postForm(t, path, url.Values{"text": {""}}, other).Result()
		}},
		{name: "valid post", do: func() *http.Response {
			return app.postForm(t, path, url.Values{"text": {"Hijacked"}}, other).Result()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.do()
			assert.Equal(t, http.StatusFound, res.StatusCode)
			assert.Equal(t, detail, res.Header.Get(echo.HeaderLocation))
		})
	}

	unchanged, err := app.repos.Posts.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original text", unchanged.Text)
	assert.Equal(t, author.ID, unchanged.AuthorID)
}

func TestPostEditMissingPost(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")

	rec := app.get(t, "/posts/100500/edit/", author)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostDetail(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	reader := app.createUser(t, "reader")
	post := app.createPost(t, author, "Detailed post", nil)
	app.createPost(t, author, "Another post", nil)
	require.NoError(t, app.repos.Comments.CreateComment(context.Background(), &models.Comment{
		Text: "First comment", PostID: post.ID, AuthorID: reader.ID,
	}))

	rec := app.get(t, fmt.Sprintf("/posts/%d/", post.ID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Detailed post")
	assert.Contains(t, body, "First comment")
	assert.Contains(t, body, "<span>2</span>")
	assert.NotContains(t, body, "/edit/")
	assert.NotContains(t, body, fmt.Sprintf(`action="/posts/%d/comment/"`, post.ID))

	rec = app.get(t, fmt.Sprintf("/posts/%d/", post.ID), author)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("/posts/%d/edit/", post.ID))
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`action="/posts/%d/comment/"`, post.ID))
}

func TestNotFoundPages(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "author")

	paths := []string{
		"/posts/100500/",
		"/posts/no_existing_page/",
		"/group/no-such-group/",
		"/profile/nobody/",
		"/auth/no_existing_page/",
		"/about/unknown/",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := app.get(t, path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Custom 404")
		})
	}
}
