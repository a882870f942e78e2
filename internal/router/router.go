package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/internal/cache"
	"github.com/inkwellhq/inkwell/internal/handlers"
	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/models"
	"github.com/inkwellhq/inkwell/internal/monitoring"
	"github.com/inkwellhq/inkwell/internal/repositories"
	"github.com/inkwellhq/inkwell/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(monitoring.Instrument())
	logrus.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the page cache so callers (tests, admin tooling) can clear it.
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) (*cache.PageCache, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return nil, err
	}
	logrus.Info("Auto-migrations completed for all models.")

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)

	// Every request resolves the session cookie into the current user.
	e.Use(appMiddleware.LoadUser(userRepo, cfg.JWTSecret))
	requireLogin := appMiddleware.RequireLogin()

	// The global and followed feeds are whole-page cached. Entries live for
	// the configured TTL; writes do not invalidate them.
	pageCache := cache.New(cfg.CacheTTL)
	cached := cache.Middleware(pageCache, func(c echo.Context) uint {
		if c.Request().URL.Path == "/follow/" {
			if user := appMiddleware.CurrentUser(c); user != nil {
				return user.ID
			}
		}
		return 0
	})

	e.HTTPErrorHandler = newHTTPErrorHandler(e)

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Uploaded images
	e.Static("/media", cfg.MediaRoot)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(e)
	logrus.Info("Auth routes configured.")

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, groupRepo, followRepo, cfg.PageSize)
	feedHandler.RegisterFeedRoutes(e, cached)
	logrus.Info("Feed routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, cfg.MediaRoot)
	postHandler.RegisterPostRoutes(e, requireLogin)
	logrus.Info("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(e, requireLogin)
	logrus.Info("Comment routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(e, requireLogin)
	logrus.Info("Follow routes configured.")

	aboutHandler := handlers.NewAboutHandler()
	aboutHandler.RegisterAboutRoutes(e)

	logrus.Info("All routes configured.")
	return pageCache, nil
}

// newHTTPErrorHandler renders the 404 page for missing entities and routes,
// and falls back to Echo's default handler otherwise.
func newHTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			code = http.StatusNotFound
		}

		if code == http.StatusNotFound {
			renderErr := c.Render(http.StatusNotFound, "404.html", echo.Map{
				"Title": "Page not found",
				"User":  appMiddleware.CurrentUser(c),
				"Path":  c.Request().URL.Path,
			})
			if renderErr == nil {
				return
			}
		}

		e.DefaultHTTPErrorHandler(err, c)
	}
}
