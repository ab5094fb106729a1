package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/handlers"
	"github.com/anonto42/yatube/internal/logging"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/validators"
)

// LoginURL is where LoginRequired sends anonymous visitors.
const LoginURL = "/auth/login/"

// Dependencies are the services the routes are built over.
type Dependencies struct {
	Repos     repositories.Repositories
	Images    storage.ImageStore
	PageCache *cache.Cache
	// DB is pinged by /health; nil skips the check.
	DB handlers.Pinger
}

// New builds the echo instance with every middleware and route.
func New(cfg *config.Config, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := views.NewRenderer(deps.Images)
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	deps.PageCache.OnHit = metrics.RecordPageCacheHit
	deps.PageCache.OnMiss = metrics.RecordPageCacheMiss

	sessions := middleware.NewSessionManager(deps.Repos.Users, cfg.SecretKey, cfg.IsProduction())

	SetupMiddleware(e, cfg, sessions)
	SetupRoutes(e, cfg, deps, sessions)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, sessions *middleware.SessionManager) {
	e.Use(eMiddleware.Recover())
	e.Use(logging.RequestLogger())
	e.Use(middleware.Metrics())
	if cfg.CSRFEnabled {
		e.Use(eMiddleware.CSRFWithConfig(eMiddleware.CSRFConfig{
			TokenLookup:    "form:csrf_token",
			ContextKey:     handlers.CSRFKey,
			CookieName:     "csrftoken",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.IsProduction(),
			CookieSameSite: http.SameSiteLaxMode,
			// missing and invalid tokens both answer 403
			ErrorHandler: func(err error, c echo.Context) error {
				return echo.NewHTTPError(http.StatusForbidden, "CSRF verification failed").SetInternal(err)
			},
		}))
	}
	e.Use(sessions.Middleware())
	logging.Debug().Bool("csrf", cfg.CSRFEnabled).Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies, sessions *middleware.SessionManager) {
	e.GET("/health", handlers.HealthCheck(deps.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static("/static", cfg.StaticDir)
	if local, ok := deps.Images.(*storage.LocalStore); ok {
		e.Static(strings.TrimSuffix(cfg.MediaURL, "/"), local.Root())
	}

	auth := middleware.LoginRequired(LoginURL)
	site := e.Group("")

	feedHandler := handlers.NewFeedHandler(deps.Repos, cfg.PostsPerPage)
	feedHandler.RegisterFeedRoutes(site, middleware.CachePage(deps.PageCache), auth)

	postHandler := handlers.NewPostHandler(deps.Repos, deps.Images)
	postHandler.RegisterPostRoutes(site, auth)

	commentHandler := handlers.NewCommentHandler(deps.Repos)
	commentHandler.RegisterCommentRoutes(site, auth)

	followHandler := handlers.NewFollowHandler(deps.Repos)
	followHandler.RegisterFollowRoutes(site, auth)

	handlers.RegisterAboutRoutes(site)

	authHandler := handlers.NewAuthHandler(deps.Repos.Users, sessions)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	logging.Debug().Int("routes", len(e.Routes())).Msg("routes configured")
}
