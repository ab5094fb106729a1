package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "sessionid"
	// UserKey is the echo context key holding the current *models.User.
	UserKey = "user"

	sessionTTL = 72 * time.Hour
)

// SessionManager issues and verifies the session cookie.
type SessionManager struct {
	users  repositories.UserRepository
	secret []byte
	secure bool
	now    func() time.Time
}

// NewSessionManager signs tokens with secret. secure marks the cookie as
// HTTPS only.
func NewSessionManager(users repositories.UserRepository, secret string, secure bool) *SessionManager {
	return &SessionManager{
		users:  users,
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

// Middleware resolves the session cookie to a user and stores it under
// UserKey. Missing, invalid or stale sessions leave the request anonymous.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := m.parse(cookie.Value)
			if err != nil {
				logging.Debug().Err(err).Msg("rejected session token")
				return next(c)
			}

			user, err := m.users.GetUserByID(c.Request().Context(), claims.UserID)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return next(c)
			case err != nil:
				logging.Warn().Err(err).Uint("user_id", claims.UserID).Msg("session user lookup failed")
				return next(c)
			}
			if user.Username != claims.Username {
				return next(c)
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// Login starts a session for user.
func (m *SessionManager) Login(c echo.Context, user *models.User) error {
	token, err := m.Token(user)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(sessionTTL),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(UserKey, user)
	return nil
}

// Logout drops the session cookie.
func (m *SessionManager) Logout(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(UserKey, nil)
}

// Token generates a signed session token for user.
func (m *SessionManager) Token(user *models.User) (string, error) {
	now := m.now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return t, nil
}

func (m *SessionManager) parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// CurrentUser returns the authenticated user of the request, nil for
// anonymous visitors.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}
