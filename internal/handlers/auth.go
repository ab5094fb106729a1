package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
)

const invalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AuthHandler handles sign up, log in and log out
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *middleware.SessionManager
	passwordCost   int
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		passwordCost:   bcrypt.DefaultCost,
	}
}

// RegisterAuthRoutes registers authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/signup/", h.SignupPage)
	g.POST("/signup/", h.Signup)
	g.GET("/login/", h.LoginPage)
	g.POST("/login/", h.Login)
	g.POST("/logout/", h.Logout)
}

// SignupPage shows the registration form
func (h *AuthHandler) SignupPage(c echo.Context) error {
	return h.renderSignup(c, &forms.SignupForm{}, nil)
}

// Signup registers a user and logs them in
func (h *AuthHandler) Signup(c echo.Context) error {
	form := &forms.SignupForm{}
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	errs := form.Clean(c.Echo().Validator)
	if errs.Any() {
		return h.renderSignup(c, form, errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password1), h.passwordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			errs.Add("username", "A user with that username already exists.")
			return h.renderSignup(c, form, errs)
		}
		return fmt.Errorf("create user: %w", err)
	}
	logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user signed up")

	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// LoginPage shows the login form
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.renderLogin(c, &forms.LoginForm{Next: c.QueryParam("next")}, nil)
}

// Login checks the credentials and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	form := &forms.LoginForm{}
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	errs := form.Clean(c.Echo().Validator)
	if errs.Any() {
		return h.renderLogin(c, form, errs)
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), form.Username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		errs.Add(forms.NonField, invalidLogin)
		return h.renderLogin(c, form, errs)
	}

	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, forms.SafeNext(form.Next, "/"))
}

// Logout ends the session
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c)
	return render(c, http.StatusOK, "users/logged_out.html", nil)
}

func (h *AuthHandler) renderSignup(c echo.Context, form *forms.SignupForm, errs forms.Errors) error {
	return render(c, http.StatusOK, "users/signup.html", views.Data{"Form": form, "Errors": errs})
}

func (h *AuthHandler) renderLogin(c echo.Context, form *forms.LoginForm, errs forms.Errors) error {
	return render(c, http.StatusOK, "users/login.html", views.Data{"Form": form, "Errors": errs})
}
