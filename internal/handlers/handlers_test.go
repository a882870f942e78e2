package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/cache"
	appMiddleware "github.com/inkwellhq/inkwell/internal/middleware"
	"github.com/inkwellhq/inkwell/internal/models"
	"github.com/inkwellhq/inkwell/internal/render"
	"github.com/inkwellhq/inkwell/internal/router"
	"github.com/inkwellhq/inkwell/internal/validators"
	"github.com/inkwellhq/inkwell/pkg/config"
)

const testSecret = "test-secret"

type testApp struct {
	e         *echo.Echo
	db        *gorm.DB
	pageCache *cache.PageCache
}

// newTestApp wires the full application against an in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	cfg := &config.Config{
		Env:       "test",
		JWTSecret: testSecret,
		MediaRoot: t.TempDir(),
		PageSize:  10,
		CacheTTL:  time.Minute,
	}

	e := echo.New()
	e.Renderer = render.New()
	e.Validator = validators.NewValidator()

	pageCache, err := router.SetupRoutes(e, db, cfg)
	if err != nil {
		t.Fatalf("set up routes: %v", err)
	}

	return &testApp{e: e, db: db, pageCache: pageCache}
}

func (a *testApp) get(t *testing.T, path string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	a.attachSession(t, req, user)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	a.attachSession(t, req, user)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) attachSession(t *testing.T, req *http.Request, user *models.User) {
	t.Helper()
	if user == nil {
		return
	}
	token, err := appMiddleware.NewSessionToken(user, testSecret)
	if err != nil {
		t.Fatalf("sign session token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: appMiddleware.SessionCookieName, Value: token})
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := a.db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (a *testApp) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug}
	if err := a.db.Create(group).Error; err != nil {
		t.Fatalf("create group %s: %v", slug, err)
	}
	return group
}

func (a *testApp) createPost(t *testing.T, author *models.User, group *models.Group, text string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: at}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := a.db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", text, err)
	}
	return post
}
