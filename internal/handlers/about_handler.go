package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
)

// AboutHandler serves the static about pages.
type AboutHandler struct{}

// NewAboutHandler creates a new AboutHandler
func NewAboutHandler() *AboutHandler {
	return &AboutHandler{}
}

// RegisterAboutRoutes registers the static pages
func (h *AboutHandler) RegisterAboutRoutes(e *echo.Echo) {
	e.GET("/about/author/", h.Author)
	e.GET("/about/tech/", h.Tech)
}

// Author renders the about-author page
func (h *AboutHandler) Author(c echo.Context) error {
	return c.Render(http.StatusOK, "about_author.html", echo.Map{
		"Title": "About the author",
		"User":  appMiddleware.CurrentUser(c),
	})
}

// Tech renders the technology page
func (h *AboutHandler) Tech(c echo.Context) error {
	return c.Render(http.StatusOK, "about_tech.html", echo.Map{
		"Title": "Technology",
		"User":  appMiddleware.CurrentUser(c),
	})
}
