package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/pagination"
	"github.com/inkwellhq/inkwell/internal/repositories"
)

// FeedHandler serves the paginated feed views: global, group, profile and
// followed-authors.
type FeedHandler struct {
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	groupRepository  repositories.GroupRepository
	followRepository repositories.FollowRepository
	pageSize         int
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	followRepo repositories.FollowRepository,
	pageSize int,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		groupRepository:  groupRepo,
		followRepository: followRepo,
		pageSize:         pageSize,
	}
}

// RegisterFeedRoutes registers the feed routes. The global and followed
// feeds sit behind the page cache middleware.
func (h *FeedHandler) RegisterFeedRoutes(e *echo.Echo, cached echo.MiddlewareFunc) {
	e.GET("/", h.Index, cached)
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/profile/:username/", h.Profile)
	e.GET("/follow/", h.FollowIndex, appMiddleware.RequireLogin(), cached)
}

// Index renders the global feed, newest first
func (h *FeedHandler) Index(c echo.Context) error {
	total, err := h.postRepository.GlobalFeedCount()
	if err != nil {
		return err
	}
	page := pagination.Resolve(c.QueryParam("page"), h.pageSize, total)
	posts, err := h.postRepository.GlobalFeed(page.Offset(), page.Size)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"Title": "Latest posts",
		"User":  appMiddleware.CurrentUser(c),
		"Posts": posts,
		"Page":  page,
	})
}

// GroupPosts renders one group's feed; unknown slugs get the 404 page
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		return err
	}

	total, err := h.postRepository.GroupFeedCount(group.ID)
	if err != nil {
		return err
	}
	page := pagination.Resolve(c.QueryParam("page"), h.pageSize, total)
	posts, err := h.postRepository.GroupFeed(group.ID, page.Offset(), page.Size)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "group_list.html", echo.Map{
		"Title": group.Title,
		"User":  appMiddleware.CurrentUser(c),
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

// Profile renders an author's feed plus follow state for the viewer
func (h *FeedHandler) Profile(c echo.Context) error {
	author, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		return err
	}

	total, err := h.postRepository.AuthorFeedCount(author.ID)
	if err != nil {
		return err
	}
	page := pagination.Resolve(c.QueryParam("page"), h.pageSize, total)
	posts, err := h.postRepository.AuthorFeed(author.ID, page.Offset(), page.Size)
	if err != nil {
		return err
	}

	viewer := appMiddleware.CurrentUser(c)
	following := false
	if viewer != nil && viewer.ID != author.ID {
		following, err = h.followRepository.IsFollowing(viewer.ID, author.ID)
		if err != nil {
			return err
		}
	}
	followers, err := h.followRepository.GetFollowersCount(author.ID)
	if err != nil {
		return err
	}
	followingCount, err := h.followRepository.GetFollowingCount(author.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "profile.html", echo.Map{
		"Title":          "Posts by " + author.Username,
		"User":           viewer,
		"Author":         author,
		"Posts":          posts,
		"Page":           page,
		"Following":      following,
		"Followers":      followers,
		"FollowingCount": followingCount,
	})
}

// FollowIndex renders posts by the authors the viewer follows. Following
// nobody is not an error, just an empty feed.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	viewer := appMiddleware.CurrentUser(c)

	total, err := h.postRepository.FollowedFeedCount(viewer.ID)
	if err != nil {
		return err
	}
	page := pagination.Resolve(c.QueryParam("page"), h.pageSize, total)
	posts, err := h.postRepository.FollowedFeed(viewer.ID, page.Offset(), page.Size)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "follow.html", echo.Map{
		"Title": "Followed authors",
		"User":  viewer,
		"Posts": posts,
		"Page":  page,
	})
}
