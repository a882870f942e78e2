package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/models"
	"github.com/inkwellhq/inkwell/internal/monitoring"
	"github.com/inkwellhq/inkwell/internal/repositories"
)

// PostHandler serves the post detail page and the create/edit/delete flows.
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	mediaRoot       string
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, mediaRoot string) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		mediaRoot:       mediaRoot,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, requireLogin echo.MiddlewareFunc) {
	e.GET("/posts/:id/", h.Detail)
	e.GET("/create/", h.CreateForm, requireLogin)
	e.POST("/create/", h.Create, requireLogin)
	e.GET("/posts/:id/edit/", h.EditForm, requireLogin)
	e.POST("/posts/:id/edit/", h.Edit, requireLogin)
	e.POST("/posts/:id/delete/", h.Delete, requireLogin)
}

func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return uint(id), nil
}

// Detail renders a post with its comments and the comment form
func (h *PostHandler) Detail(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostWithComments(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		return err
	}

	return c.Render(http.StatusOK, "post_detail.html", echo.Map{
		"Title": "Post by " + post.Author.Username,
		"User":  appMiddleware.CurrentUser(c),
		"Post":  post,
	})
}

func (h *PostHandler) renderForm(c echo.Context, status int, post *models.Post, editing bool, formError string) error {
	groups, err := h.groupRepository.GetGroups()
	if err != nil {
		return err
	}
	var selected uint
	if post != nil && post.GroupID != nil {
		selected = *post.GroupID
	}
	title := "New post"
	if editing {
		title = "Edit post"
	}
	return c.Render(status, "create_post.html", echo.Map{
		"Title":         title,
		"User":          appMiddleware.CurrentUser(c),
		"Post":          post,
		"Groups":        groups,
		"SelectedGroup": selected,
		"Editing":       editing,
		"Error":         formError,
	})
}

// CreateForm renders the empty post form
func (h *PostHandler) CreateForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, nil, false, "")
}

// Create publishes a new post and redirects to the author's profile
func (h *PostHandler) Create(c echo.Context) error {
	user := appMiddleware.CurrentUser(c)

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, nil, false, "Text is required")
	}

	groupID, err := h.resolveGroup(form.GroupID)
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, nil, false, "Unknown group")
	}

	image, err := h.saveImage(c)
	if err != nil {
		return err
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := h.postRepository.CreatePost(post); err != nil {
		return err
	}
	monitoring.PostsCreated.Inc()

	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// EditForm renders the pre-filled form; non-authors land on the detail page
func (h *PostHandler) EditForm(c echo.Context) error {
	post, redirect, err := h.ownedPost(c)
	if err != nil || redirect {
		return err
	}
	return h.renderForm(c, http.StatusOK, post, true, "")
}

// Edit applies changes to a post and redirects to its detail page
func (h *PostHandler) Edit(c echo.Context) error {
	post, redirect, err := h.ownedPost(c)
	if err != nil || redirect {
		return err
	}

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, post, true, "Text is required")
	}

	groupID, err := h.resolveGroup(form.GroupID)
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, post, true, "Unknown group")
	}

	post.Text = form.Text
	post.GroupID = groupID
	if image, err := h.saveImage(c); err != nil {
		return err
	} else if image != "" {
		post.Image = image
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// Delete removes a post (and, with it, its comments)
func (h *PostHandler) Delete(c echo.Context) error {
	post, redirect, err := h.ownedPost(c)
	if err != nil || redirect {
		return err
	}
	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return err
	}
	user := appMiddleware.CurrentUser(c)
	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// ownedPost loads the requested post and enforces the author-only rule:
// a non-author is redirected to the detail page, not shown an error.
func (h *PostHandler) ownedPost(c echo.Context) (*models.Post, bool, error) {
	id, err := postID(c)
	if err != nil {
		return nil, false, err
	}
	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, echo.ErrNotFound
		}
		return nil, false, err
	}
	user := appMiddleware.CurrentUser(c)
	if user.ID != post.AuthorID {
		return nil, true, c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
	}
	return post, false, nil
}

func (h *PostHandler) resolveGroup(raw string) (*uint, error) {
	if raw == "" || raw == "0" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	group, err := h.groupRepository.GetGroupByID(uint(id))
	if err != nil {
		return nil, err
	}
	return &group.ID, nil
}

// saveImage stores an uploaded image under the media root and returns the
// stored filename; an absent file part is not an error.
func (h *PostHandler) saveImage(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.mediaRoot, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(h.mediaRoot, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}
