package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

var seedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func countPosts(body string) int {
	return strings.Count(body, `<article class="post">`)
}

func TestIndexPaginatesThirteenPosts(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	for i := 0; i < 13; i++ {
		app.createPost(t, author, nil, fmt.Sprintf("post number %d", i), seedTime.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		name  string
		path  string
		posts int
	}{
		{name: "first page holds the page size", path: "/", posts: 10},
		{name: "second page holds the remainder", path: "/?page=2", posts: 3},
		{name: "out of range clamps to last page", path: "/?page=99", posts: 3},
		{name: "non-numeric falls back to first page", path: "/?page=abc", posts: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			rec := app.get(t, tt.path, nil)
			c.Assert(rec.Code, qt.Equals, http.StatusOK)
			c.Assert(countPosts(rec.Body.String()), qt.Equals, tt.posts)
		})
	}
}

func TestIndexOrdersNewestFirst(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	author := app.createUser(t, "author")
	app.createPost(t, author, nil, "the older entry", seedTime)
	app.createPost(t, author, nil, "the newer entry", seedTime.Add(time.Minute))

	rec := app.get(t, "/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	body := rec.Body.String()
	c.Assert(strings.Index(body, "the newer entry") < strings.Index(body, "the older entry"), qt.IsTrue)
}

func TestGroupFeed(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	author := app.createUser(t, "author")
	cats := app.createGroup(t, "Cats", "cats")
	app.createPost(t, author, cats, "a cat post", seedTime)
	app.createPost(t, author, nil, "an ungrouped post", seedTime.Add(time.Minute))

	rec := app.get(t, "/group/cats/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	body := rec.Body.String()
	c.Assert(strings.Contains(body, "a cat post"), qt.IsTrue)
	c.Assert(strings.Contains(body, "an ungrouped post"), qt.IsFalse)
}

func TestGroupFeedUnknownSlugIs404(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)

	rec := app.get(t, "/group/no-such-group/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(strings.Contains(rec.Body.String(), "Page not found"), qt.IsTrue)
}

func TestProfileShowsFollowState(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	author := app.createUser(t, "author")
	viewer := app.createUser(t, "viewer")
	app.createPost(t, author, nil, "an authored post", seedTime)

	rec := app.get(t, "/profile/author/", viewer)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "/profile/author/follow/"), qt.IsTrue)

	rec = app.get(t, "/profile/author/follow/", viewer)
	c.Assert(rec.Code, qt.Equals, http.StatusFound)

	rec = app.get(t, "/profile/author/", viewer)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "/profile/author/unfollow/"), qt.IsTrue)
}

func TestProfileUnknownUsernameIs404(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)

	rec := app.get(t, "/profile/nobody/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestFollowedFeedShowsOnlyFollowedAuthors(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	viewer := app.createUser(t, "viewer")
	followed := app.createUser(t, "followed")
	ignored := app.createUser(t, "ignored")
	app.createPost(t, followed, nil, "from a followed author", seedTime)
	app.createPost(t, ignored, nil, "from an ignored author", seedTime.Add(time.Minute))

	rec := app.get(t, "/profile/followed/follow/", viewer)
	c.Assert(rec.Code, qt.Equals, http.StatusFound)

	rec = app.get(t, "/follow/", viewer)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	body := rec.Body.String()
	c.Assert(strings.Contains(body, "from a followed author"), qt.IsTrue)
	c.Assert(strings.Contains(body, "from an ignored author"), qt.IsFalse)
}

func TestIndexIsCachedUntilClear(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	author := app.createUser(t, "author")
	app.createPost(t, author, nil, "the original post", seedTime)

	rec := app.get(t, "/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "the original post"), qt.IsTrue)

	// A write during the TTL window stays invisible on the cached view.
	app.createPost(t, author, nil, "the fresh post", seedTime.Add(time.Minute))

	rec = app.get(t, "/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "the fresh post"), qt.IsFalse)
	c.Assert(strings.Contains(rec.Body.String(), "the original post"), qt.IsTrue)

	// An uncached read sees it immediately; the cached view only after Clear.
	app.pageCache.Clear()

	rec = app.get(t, "/", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "the fresh post"), qt.IsTrue)
}

func TestFollowedFeedCacheIsPerViewer(t *testing.T) {
	c := qt.New(t)
	app := newTestApp(t)
	follower := app.createUser(t, "follower")
	loner := app.createUser(t, "loner")
	author := app.createUser(t, "author")
	app.createPost(t, author, nil, "a followed-only post", seedTime)

	rec := app.get(t, "/profile/author/follow/", follower)
	c.Assert(rec.Code, qt.Equals, http.StatusFound)

	rec = app.get(t, "/follow/", follower)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "a followed-only post"), qt.IsTrue)

	// The second viewer must not be served the first viewer's cached page.
	rec = app.get(t, "/follow/", loner)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "a followed-only post"), qt.IsFalse)
}
