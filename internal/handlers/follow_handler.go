package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/repositories"
)

// FollowHandler serves the follow/unfollow links on profile pages.
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(e *echo.Echo, requireLogin echo.MiddlewareFunc) {
	e.GET("/profile/:username/follow/", h.Follow, requireLogin)
	e.GET("/profile/:username/unfollow/", h.Unfollow, requireLogin)
}

func (h *FollowHandler) author(c echo.Context) (uint, string, error) {
	author, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", echo.ErrNotFound
		}
		return 0, "", err
	}
	return author.ID, "/profile/" + author.Username + "/", nil
}

// Follow subscribes the viewer to the author. Repeats and self-follow
// attempts end in the same redirect with no new edge.
func (h *FollowHandler) Follow(c echo.Context) error {
	authorID, profile, err := h.author(c)
	if err != nil {
		return err
	}
	viewer := appMiddleware.CurrentUser(c)

	if err := h.followRepository.Follow(viewer.ID, authorID); err != nil &&
		!errors.Is(err, repositories.ErrSelfFollow) {
		return err
	}
	return c.Redirect(http.StatusFound, profile)
}

// Unfollow removes the subscription; removing a missing one is a no-op
func (h *FollowHandler) Unfollow(c echo.Context) error {
	authorID, profile, err := h.author(c)
	if err != nil {
		return err
	}
	viewer := appMiddleware.CurrentUser(c)

	if err := h.followRepository.Unfollow(viewer.ID, authorID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, profile)
}
