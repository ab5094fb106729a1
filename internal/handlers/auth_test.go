package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
)

func sessionCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignupPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/auth/signup/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, field := range []string{"first_name", "last_name", "username", "email", "password1", "password2"} {
		assert.Contains(t, body, `name="`+field+`"`)
	}
}

func TestSignupCreatesUserAndLogsIn(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, "/auth/signup/", url.Values{
		"first_name": {"Leo"},
		"last_name":  {"Tolstoy"},
		"username":   {"test_user"},
		"email":      {"leo@example.com"},
		"password1":  {"hgfjhfijhh87832jkjk"},
		"password2":  {"hgfjhfijhh87832jkjk"},
	}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, sessionCookie(rec))

	user, err := app.repos.Users.GetUserByUsername(context.Background(), "test_user")
	require.NoError(t, err)
	assert.Equal(t, "Leo Tolstoy", user.FullName())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hgfjhfijhh87832jkjk")))
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "taken")

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "password mismatch",
			form:    url.Values{"username": {"new_user"}, "password1": {"hgfjhfijhh87832jkjk"}, "password2": {"another-password"}},
			message: "The two password fields didn",
		},
		{
			name:    "short password",
			form:    url.Values{"username": {"new_user"}, "password1": {"short"}, "password2": {"short"}},
			message: "at least 8 characters",
		},
		{
			name:    "duplicate username",
			form:    url.Values{"username": {"taken"}, "password1": {"hgfjhfijhh87832jkjk"}, "password2": {"hgfjhfijhh87832jkjk"}},
			message: "A user with that username already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postForm(t, "/auth/signup/", tt.form, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Nil(t, sessionCookie(rec))
		})
	}

	_, err := app.repos.Users.GetUserByUsername(context.Background(), "new_user")
	assert.Error(t, err)
}

func createUserWithPassword(t *testing.T, app *testApp, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Password: string(hash)}
	require.NoError(t, app.repos.Users.CreateUser(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	createUserWithPassword(t, app, "leo", "correct-horse")

	page := app.get(t, "/auth/login/?next=/create/", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `name="next" value="/create/"`)

	tests := []struct {
		name     string
		next     string
		location string
	}{
		{name: "to next", next: "/create/", location: "/create/"},
		{name: "no next", next: "", location: "/"},
		{name: "foreign next", next: "https://evil.example.com/", location: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postForm(t, "/auth/login/", url.Values{
				"username": {"leo"},
				"password": {"correct-horse"},
				"next":     {tt.next},
			}, nil)
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get(echo.HeaderLocation))
			assert.NotNil(t, sessionCookie(rec))
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	createUserWithPassword(t, app, "leo", "correct-horse")

	for _, form := range []url.Values{
		{"username": {"leo"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"correct-horse"}},
	} {
		rec := app.postForm(t, "/auth/login/", form, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")
		assert.Nil(t, sessionCookie(rec))
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "leo")

	rec := app.get(t, "/auth/logout/", user)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Nil(t, sessionCookie(rec))

	rec = app.postForm(t, "/auth/logout/", url.Values{}, user)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have logged out")
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestAboutPages(t *testing.T) {
	app := newTestApp(t)

	for path, title := range map[string]string{
		"/about/author/": "About the author",
		"/about/tech/":   "Technologies",
	} {
		rec := app.get(t, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<title>"+title+"</title>", path)
	}
}
