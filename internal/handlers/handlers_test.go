package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/repositories/repotest"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/pkg/validators"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

// testApp is the site wired over in-memory repositories.
type testApp struct {
	e        *echo.Echo
	store    *repotest.Store
	repos    repositories.Repositories
	sessions *middleware.SessionManager
	cache    *cache.Cache
	images   *storage.LocalStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := repotest.New()
	repos := store.Repositories()

	images, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	renderer, err := views.NewRenderer(images)
	require.NoError(t, err)

	pageCache := cache.New(20*time.Second, 0)
	t.Cleanup(pageCache.Close)

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = HTTPErrorHandler

	sessions := middleware.NewSessionManager(repos.Users, "test-secret", false)
	e.Use(sessions.Middleware())

	auth := middleware.LoginRequired("/auth/login/")
	root := e.Group("")
	NewFeedHandler(repos, 10).RegisterFeedRoutes(root, middleware.CachePage(pageCache), auth)
	NewPostHandler(repos, images).RegisterPostRoutes(root, auth)
	NewCommentHandler(repos).RegisterCommentRoutes(root, auth)
	NewFollowHandler(repos).RegisterFollowRoutes(root, auth)
	RegisterAboutRoutes(root)

	authHandler := NewAuthHandler(repos.Users, sessions)
	authHandler.passwordCost = bcrypt.MinCost
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	return &testApp{e: e, store: store, repos: repos, sessions: sessions, cache: pageCache, images: images}
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, a.repos.Users.CreateUser(context.Background(), user))
	return user
}

func (a *testApp) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "Test description"}
	require.NoError(t, a.repos.Groups.CreateGroup(context.Background(), group))
	return group
}

func (a *testApp) createPost(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, a.repos.Posts.CreatePost(context.Background(), post))
	return post
}

func (a *testApp) postCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.repos.Posts.CountPosts(context.Background(), repositories.PostFilter{})
	require.NoError(t, err)
	return n
}

func (a *testApp) followCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.repos.Follows.CountFollows(context.Background())
	require.NoError(t, err)
	return n
}

// do serves req, authenticated as user when user is not nil.
func (a *testApp) do(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := a.sessions.Token(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, path string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (a *testApp) postForm(t *testing.T, path string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.do(t, req, user)
}

// postMultipart submits fields plus an optional "image" file.
func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, image []byte, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "small.gif")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return a.do(t, req, user)
}
