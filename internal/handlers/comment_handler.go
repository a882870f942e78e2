package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/models"
	"github.com/inkwellhq/inkwell/internal/monitoring"
	"github.com/inkwellhq/inkwell/internal/repositories"
)

// CommentHandler serves the add-comment flow.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(e *echo.Echo, requireLogin echo.MiddlewareFunc) {
	e.POST("/posts/:id/comment/", h.Add, requireLogin)
}

// Add attaches a comment to a post and redirects back to the detail page.
// An empty comment is dropped silently, the redirect happens either way.
func (h *CommentHandler) Add(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		return err
	}

	detail := fmt.Sprintf("/posts/%d/", post.ID)

	var form models.CommentForm
	if err := c.Bind(&form); err != nil {
		return c.Redirect(http.StatusFound, detail)
	}
	if err := c.Validate(&form); err != nil {
		return c.Redirect(http.StatusFound, detail)
	}

	user := appMiddleware.CurrentUser(c)
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return err
	}
	monitoring.CommentsAdded.Inc()

	return c.Redirect(http.StatusFound, detail)
}
