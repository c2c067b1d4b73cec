package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/mengfw/inkwell/internal/store"
	"github.com/mengfw/inkwell/internal/syncer"
	"github.com/mengfw/inkwell/internal/testutil"
)

// testClient drives the router like a browser: it keeps session cookies
// between requests so login state carries over.
type testClient struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

// testEnv sets up a temp posts folder, SQLite DB, and the full API router
// behind the session middleware.
func testEnv(t *testing.T) (*testClient, *store.Store, string) {
	t.Helper()

	postsDir := t.TempDir()
	st := testutil.TestStore(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sy := syncer.New(st, postsDir, 0, logger)
	sessions := scs.New()

	h := NewHandler(st, sy, sessions, nil, Options{
		BlogTitle:    "Test Blog",
		BlogSubtitle: "testing",
		PostsPerPage: 5,
		Themes:       []string{"light", "dark", "ocean"},
		DefaultTheme: "light",
	})
	router := sessions.LoadAndSave(NewRouter(h))

	client := &testClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
	return client, st, postsDir
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return m
}

func register(c *testClient, username string) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		c.t.Fatalf("register %s = %d, body = %s", username, w.Code, w.Body.String())
	}
	return decodeBody(c.t, w)["user"].(map[string]any)
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	c, _, _ := testEnv(t)

	first := register(c, "alice")
	if first["is_admin"] != true {
		t.Error("first user should be admin")
	}

	c2 := &testClient{t: t, router: c.router, cookies: map[string]*http.Cookie{}}
	second := register(c2, "bob")
	if second["is_admin"] != false {
		t.Error("second user should not be admin")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	w := c.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}
}

func TestRegisterInvalidPayload(t *testing.T) {
	c, _, _ := testEnv(t)

	w := c.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid register = %d, want 400", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	w := c.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "wrongwrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", w.Code)
	}

	w = c.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost",
		"password": "password123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user = %d, want 401", w.Code)
	}
}

func TestLoginLogoutCycle(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	w := c.do(http.MethodPost, "/auth/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	w = c.do(http.MethodGet, "/profile", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("profile after logout = %d, want 401", w.Code)
	}

	w = c.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d, body = %s", w.Code, w.Body.String())
	}
	w = c.do(http.MethodGet, "/profile", nil)
	if w.Code != http.StatusOK {
		t.Errorf("profile after login = %d, want 200", w.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	// Create through the admin editor.
	w := c.do(http.MethodPost, "/admin/posts", map[string]any{
		"title":   "Hello World",
		"content": "# Hello\n\nSome **bold** text.",
		"tags":    []string{"go", "blog"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post = %d, body = %s", w.Code, w.Body.String())
	}
	post := decodeBody(t, w)["post"].(map[string]any)
	if post["slug"] != "hello-world" {
		t.Errorf("slug = %v, want hello-world", post["slug"])
	}
	if post["summary"] == "" {
		t.Error("summary should be generated from content")
	}

	// Listing strips full content.
	w = c.do(http.MethodGet, "/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	resp := decodeBody(t, w)
	posts := resp["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}
	if c, ok := posts[0].(map[string]any)["content"]; ok && c != "" {
		t.Error("listing should not carry full content")
	}

	// Detail renders HTML and bumps the view counter.
	w = c.do(http.MethodGet, "/posts/hello-world", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	resp = decodeBody(t, w)
	if html := resp["html"].(string); !bytes.Contains([]byte(html), []byte("<strong>bold</strong>")) {
		t.Errorf("html = %q, want rendered bold", html)
	}
	if views := resp["post"].(map[string]any)["view_count"].(float64); views != 1 {
		t.Errorf("view_count = %v, want 1", views)
	}
}

func TestGetPostNotFound(t *testing.T) {
	c, _, _ := testEnv(t)

	w := c.do(http.MethodGet, "/posts/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing post = %d, want 404", w.Code)
	}
}

func TestDraftHiddenFromPublic(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	published := false
	w := c.do(http.MethodPost, "/admin/posts", map[string]any{
		"title":        "Secret Draft",
		"content":      "wip",
		"is_published": &published,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft = %d, body = %s", w.Code, w.Body.String())
	}

	// Anonymous visitors see neither the listing entry nor the detail.
	anon := &testClient{t: t, router: c.router, cookies: map[string]*http.Cookie{}}
	w = anon.do(http.MethodGet, "/posts", nil)
	if posts := decodeBody(t, w)["posts"].([]any); len(posts) != 0 {
		t.Errorf("anonymous listing has %d posts, want 0", len(posts))
	}
	w = anon.do(http.MethodGet, "/posts/secret-draft", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("anonymous draft get = %d, want 404", w.Code)
	}

	// The admin still sees it.
	w = c.do(http.MethodGet, "/posts/secret-draft", nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin draft get = %d, want 200", w.Code)
	}
}

func TestUpdateAndDeletePost(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	w := c.do(http.MethodPost, "/admin/posts", map[string]any{
		"title": "First", "content": "v1",
	})
	post := decodeBody(t, w)["post"].(map[string]any)
	id := int64(post["id"].(float64))

	w = c.do(http.MethodPut, "/admin/posts/"+itoa(id), map[string]any{
		"title": "First", "content": "v2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["post"].(map[string]any)["content"]; got != "v2" {
		t.Errorf("content = %v, want v2", got)
	}

	w = c.do(http.MethodDelete, "/admin/posts/"+itoa(id), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w = c.do(http.MethodGet, "/posts/first", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestAdminRequiresAdmin(t *testing.T) {
	c, _, _ := testEnv(t)

	// Anonymous → 401.
	w := c.do(http.MethodGet, "/admin/dashboard", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous dashboard = %d, want 401", w.Code)
	}

	register(c, "alice") // admin
	regular := &testClient{t: t, router: c.router, cookies: map[string]*http.Cookie{}}
	register(regular, "bob")

	w = regular.do(http.MethodGet, "/admin/dashboard", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin dashboard = %d, want 403", w.Code)
	}
	w = c.do(http.MethodGet, "/admin/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin dashboard = %d, want 200", w.Code)
	}
}

func TestSetTheme(t *testing.T) {
	c, _, _ := testEnv(t)

	w := c.do(http.MethodPut, "/theme", map[string]string{"theme": "neon"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown theme = %d, want 400", w.Code)
	}

	w = c.do(http.MethodPut, "/theme", map[string]string{"theme": "ocean"})
	if w.Code != http.StatusOK {
		t.Fatalf("set theme = %d", w.Code)
	}

	// The session remembers the choice.
	w = c.do(http.MethodGet, "/site", nil)
	if theme := decodeBody(t, w)["theme"]; theme != "ocean" {
		t.Errorf("site theme = %v, want ocean", theme)
	}
}

func TestThemeSticksToAccount(t *testing.T) {
	c, st, _ := testEnv(t)
	u := register(c, "alice")

	w := c.do(http.MethodPut, "/theme", map[string]string{"theme": "dark"})
	if w.Code != http.StatusOK {
		t.Fatalf("set theme = %d", w.Code)
	}

	saved, err := st.UserByID(context.Background(), int64(u["id"].(float64)))
	if err != nil {
		t.Fatal(err)
	}
	if saved.Theme != "dark" {
		t.Errorf("stored theme = %q, want dark", saved.Theme)
	}
}

func TestPreviewRequiresLogin(t *testing.T) {
	c, _, _ := testEnv(t)

	w := c.do(http.MethodPost, "/markdown/preview", map[string]string{"content": "# Hi"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous preview = %d, want 401", w.Code)
	}

	register(c, "alice")
	w = c.do(http.MethodPost, "/markdown/preview", map[string]string{"content": "# Hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d", w.Code)
	}
	if html := decodeBody(t, w)["html"].(string); !bytes.Contains([]byte(html), []byte("<h1")) {
		t.Errorf("html = %q, want heading", html)
	}
}

func TestCategoryCRUD(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	w := c.do(http.MethodPost, "/admin/categories", map[string]any{
		"name": "Tech Notes",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category = %d, body = %s", w.Code, w.Body.String())
	}
	cat := decodeBody(t, w)["category"].(map[string]any)
	if cat["slug"] != "tech-notes" {
		t.Errorf("slug = %v, want tech-notes", cat["slug"])
	}
	if cat["color"] != "#3498db" {
		t.Errorf("color = %v, want default", cat["color"])
	}

	w = c.do(http.MethodGet, "/categories", nil)
	if cats := decodeBody(t, w)["categories"].([]any); len(cats) != 1 {
		t.Errorf("len(categories) = %d, want 1", len(cats))
	}

	id := int64(cat["id"].(float64))
	w = c.do(http.MethodDelete, "/admin/categories/"+itoa(id), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete category = %d", w.Code)
	}
}

func TestToggleAdminNotSelf(t *testing.T) {
	c, _, _ := testEnv(t)
	admin := register(c, "alice")

	w := c.do(http.MethodPost, "/admin/users/"+itoa(int64(admin["id"].(float64)))+"/toggle-admin", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self toggle = %d, want 400", w.Code)
	}

	other := &testClient{t: t, router: c.router, cookies: map[string]*http.Cookie{}}
	bob := register(other, "bob")
	w = c.do(http.MethodPost, "/admin/users/"+itoa(int64(bob["id"].(float64)))+"/toggle-admin", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["user"].(map[string]any)["is_admin"]; got != true {
		t.Errorf("is_admin = %v, want true", got)
	}
}

func TestExplicitSyncEndpoint(t *testing.T) {
	c, _, postsDir := testEnv(t)
	register(c, "alice")

	writePost(t, postsDir, "tech/from-disk.md", "---\ntitle: From Disk\n---\n\nbody text")

	w := c.do(http.MethodPost, "/admin/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync = %d, body = %s", w.Code, w.Body.String())
	}
	res := decodeBody(t, w)
	if res["created"].(float64) != 1 {
		t.Errorf("created = %v, want 1", res["created"])
	}

	w = c.do(http.MethodGet, "/posts/from-disk", nil)
	if w.Code != http.StatusOK {
		t.Errorf("synced post = %d, want 200", w.Code)
	}
}

func TestBackgroundSyncPicksUpFiles(t *testing.T) {
	c, _, postsDir := testEnv(t)

	writePost(t, postsDir, "lazy.md", "---\ntitle: Lazy Post\n---\n\nhello")

	// A zero throttle interval means any content read reconciles first.
	w := c.do(http.MethodGet, "/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if posts := decodeBody(t, w)["posts"].([]any); len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(posts))
	}
}

func TestListPostsPagination(t *testing.T) {
	c, _, _ := testEnv(t)
	register(c, "alice")

	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		w := c.do(http.MethodPost, "/admin/posts", map[string]any{
			"title": title, "content": "body",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s = %d", title, w.Code)
		}
	}

	w := c.do(http.MethodGet, "/posts?page=2", nil)
	resp := decodeBody(t, w)
	if total := resp["total"].(float64); total != 6 {
		t.Errorf("total = %v, want 6", total)
	}
	if posts := resp["posts"].([]any); len(posts) != 1 {
		t.Errorf("page 2 len = %d, want 1 with per_page 5", len(posts))
	}
}

func writePost(t *testing.T, root, rel, content string) {
	t.Helper()
	testutil.WriteMarkdown(t, root, rel, content)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
