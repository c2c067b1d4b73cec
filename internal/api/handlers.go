package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/mengfw/inkwell/internal/githubproxy"
	"github.com/mengfw/inkwell/internal/markdown"
	"github.com/mengfw/inkwell/internal/store"
	"github.com/mengfw/inkwell/internal/syncer"
)

// Options carries the blog-level settings handlers need.
type Options struct {
	BlogTitle    string
	BlogSubtitle string
	PostsPerPage int
	Themes       []string
	DefaultTheme string
}

// Handler holds API route handlers.
type Handler struct {
	store    *store.Store
	syncer   *syncer.Syncer
	sessions *scs.SessionManager
	github   *githubproxy.Client
	opts     Options
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store, sy *syncer.Syncer, sessions *scs.SessionManager, gh *githubproxy.Client, opts Options) *Handler {
	if opts.PostsPerPage < 1 {
		opts.PostsPerPage = 10
	}
	return &Handler{store: st, syncer: sy, sessions: sessions, github: gh, opts: opts}
}

// Site handles GET /api/site: blog metadata for page chrome.
func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":      h.opts.BlogTitle,
		"subtitle":   h.opts.BlogSubtitle,
		"categories": cats,
		"themes":     h.opts.Themes,
		"theme":      h.currentTheme(r),
	})
}

// ListPosts handles GET /api/posts with pagination, category filter, and
// title/content search.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	posts, total, err := h.store.ListPosts(r.Context(), store.ListOptions{
		Page:          page,
		PerPage:       h.opts.PostsPerPage,
		CategorySlug:  q.Get("category"),
		Query:         q.Get("q"),
		PublishedOnly: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// Listings carry summaries only.
	for i := range posts {
		posts[i].Content = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":    posts,
		"total":    total,
		"page":     max(page, 1),
		"per_page": h.opts.PostsPerPage,
	})
}

// GetPost handles GET /api/posts/{slug}: the full post with rendered HTML.
// Each hit bumps the view counter.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.store.PostBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if !post.Published && !isAdmin(r) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	html, err := markdown.Render(post.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.IncrementViews(r.Context(), post.ID); err != nil {
		writeError(w, err)
		return
	}
	post.ViewCount++

	writeJSON(w, http.StatusOK, map[string]any{
		"post": post,
		"html": html,
	})
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// SetTheme handles PUT /api/theme. The choice sticks to the account when
// logged in, otherwise to the session.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !slices.Contains(h.opts.Themes, req.Theme) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown theme"))
		return
	}

	if u := currentUser(r); u != nil {
		if err := h.store.SetTheme(r.Context(), u.ID, req.Theme); err != nil {
			writeError(w, err)
			return
		}
	}
	h.sessions.Put(r.Context(), sessionKeyTheme, req.Theme)
	writeJSON(w, http.StatusOK, map[string]any{"theme": req.Theme})
}

// Preview handles POST /api/markdown/preview for the editor.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	html, err := markdown.Render(req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

func (h *Handler) currentTheme(r *http.Request) string {
	if u := currentUser(r); u != nil && u.Theme != "" {
		return u.Theme
	}
	if t := h.sessions.GetString(r.Context(), sessionKeyTheme); t != "" {
		return t
	}
	return h.opts.DefaultTheme
}

func isAdmin(r *http.Request) bool {
	u := currentUser(r)
	return u != nil && u.IsAdmin
}
