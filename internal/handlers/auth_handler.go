package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/models"
	"github.com/inkwellhq/inkwell/internal/monitoring"
	"github.com/inkwellhq/inkwell/internal/repositories"
)

// AuthHandler serves the signup/login/logout pages.
type AuthHandler struct {
	userRepository repositories.UserRepository
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(e *echo.Echo) {
	e.GET("/auth/signup/", h.SignupForm)
	e.POST("/auth/signup/", h.Signup)
	e.GET("/auth/login/", h.LoginForm)
	e.POST("/auth/login/", h.Login)
	e.GET("/auth/logout/", h.Logout)
}

func (h *AuthHandler) renderSignup(c echo.Context, status int, formError string) error {
	return c.Render(status, "signup.html", echo.Map{
		"Title": "Sign up",
		"User":  appMiddleware.CurrentUser(c),
		"Error": formError,
	})
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, next, formError string) error {
	return c.Render(status, "login.html", echo.Map{
		"Title": "Log in",
		"User":  appMiddleware.CurrentUser(c),
		"Next":  next,
		"Error": formError,
	})
}

// SignupForm renders the registration page
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return h.renderSignup(c, http.StatusOK, "")
}

// Signup registers a user, logs them in and redirects to the global feed
func (h *AuthHandler) Signup(c echo.Context) error {
	var form models.SignupForm
	if err := c.Bind(&form); err != nil {
		return h.renderSignup(c, http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderSignup(c, http.StatusBadRequest, "All fields are required; passwords need at least 8 characters")
	}

	if _, err := h.userRepository.GetUserByUsername(form.Username); err == nil {
		return h.renderSignup(c, http.StatusBadRequest, "The username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hashed),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return h.renderSignup(c, http.StatusBadRequest, "Could not create the account")
	}
	monitoring.SignupSuccess.Inc()

	token, err := appMiddleware.NewSessionToken(user, h.jwtSecret)
	if err != nil {
		return err
	}
	appMiddleware.SetSessionCookie(c, token)

	return c.Redirect(http.StatusFound, "/")
}

// LoginForm renders the login page, keeping the next parameter
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, c.QueryParam("next"), "")
}

// Login authenticates a user and redirects to next or the global feed
func (h *AuthHandler) Login(c echo.Context) error {
	var form models.LoginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, "", "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		monitoring.LoginFailure.WithLabelValues("missing_fields").Inc()
		return h.renderLogin(c, http.StatusBadRequest, form.Next, "Username and password are required")
	}

	user, err := h.userRepository.GetUserByUsername(form.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
			return h.renderLogin(c, http.StatusUnauthorized, form.Next, "Invalid username or password")
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		monitoring.LoginFailure.WithLabelValues("bad_password").Inc()
		return h.renderLogin(c, http.StatusUnauthorized, form.Next, "Invalid username or password")
	}

	token, err := appMiddleware.NewSessionToken(user, h.jwtSecret)
	if err != nil {
		return err
	}
	appMiddleware.SetSessionCookie(c, token)
	monitoring.LoginSuccess.Inc()

	// Only same-site continuations, never an absolute URL.
	next := form.Next
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	return c.Redirect(http.StatusFound, next)
}

// Logout clears the session cookie and redirects to the global feed
func (h *AuthHandler) Logout(c echo.Context) error {
	appMiddleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/")
}
