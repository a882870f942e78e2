package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/internal/render"
	"github.com/inkwellhq/inkwell/internal/router"
	"github.com/inkwellhq/inkwell/internal/validators"
	"github.com/inkwellhq/inkwell/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logrus.SetOutput(os.Stdout)
	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(db)

	// Create Echo instance
	e := echo.New()

	// Templates and form validation
	e.Renderer = render.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if _, err := router.SetupRoutes(e, db, cfg); err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
