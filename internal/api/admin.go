package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mengfw/inkwell/internal/markdown"
	"github.com/mengfw/inkwell/internal/models"
	"github.com/mengfw/inkwell/internal/store"
)

// Dashboard handles GET /api/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	users, err := h.store.CountUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": stats,
		"users": users,
	})
}

// AdminListPosts handles GET /api/admin/posts: drafts included.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	posts, total, err := h.store.ListPosts(r.Context(), store.ListOptions{
		Page:    page,
		PerPage: h.opts.PostsPerPage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range posts {
		posts[i].Content = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": total})
}

// CreatePost handles POST /api/admin/posts: an editor-authored post with
// a generated, collision-suffixed slug.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	slug, err := h.uniqueSlug(r, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	summary := req.Summary
	if summary == "" {
		summary = markdown.Summary(req.Content, markdown.DefaultSummaryLength)
	}
	published := req.Published == nil || *req.Published

	u := currentUser(r)
	post := &models.Post{
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		Summary:    summary,
		CoverImage: req.CoverImage,
		Published:  published,
		Tags:       req.Tags,
		AuthorID:   &u.ID,
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		writeError(w, err)
		return
	}
	if len(req.CategoryIDs) > 0 {
		if err := h.store.SetPostCategories(r.Context(), post.ID, req.CategoryIDs); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post": post})
}

// UpdatePost handles PUT /api/admin/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	post, err := h.store.PostByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	post.Title = req.Title
	post.Content = req.Content
	post.CoverImage = req.CoverImage
	post.Tags = req.Tags
	if req.Summary != "" {
		post.Summary = req.Summary
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if err := h.store.UpdatePost(r.Context(), post); err != nil {
		writeError(w, err)
		return
	}
	if req.CategoryIDs != nil {
		if err := h.store.SetPostCategories(r.Context(), post.ID, req.CategoryIDs); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// DeletePost handles DELETE /api/admin/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory handles POST /api/admin/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	cat := &models.Category{
		Name:        req.Name,
		Slug:        markdown.Slug(req.Name),
		Description: req.Description,
		Color:       defaultStr(req.Color, "#3498db"),
		Icon:        defaultStr(req.Icon, "📁"),
		SortOrder:   req.SortOrder,
	}
	if err := h.store.CreateCategory(r.Context(), cat); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"category": cat})
}

// UpdateCategory handles PUT /api/admin/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	cat := &models.Category{
		ID:          id,
		Name:        req.Name,
		Slug:        markdown.Slug(req.Name),
		Description: req.Description,
		Color:       defaultStr(req.Color, "#3498db"),
		Icon:        defaultStr(req.Icon, "📁"),
		SortOrder:   req.SortOrder,
	}
	if err := h.store.UpdateCategory(r.Context(), cat); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": cat})
}

// DeleteCategory handles DELETE /api/admin/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ToggleAdmin handles POST /api/admin/users/{id}/toggle-admin. Admins
// cannot demote themselves, so the last admin can never lock everyone out.
func (h *Handler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if currentUser(r).ID == id {
		writeJSON(w, http.StatusBadRequest, errorBody("cannot change your own admin status"))
		return
	}
	target, err := h.store.UserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.SetAdmin(r.Context(), id, !target.IsAdmin); err != nil {
		writeError(w, err)
		return
	}
	target.IsAdmin = !target.IsAdmin
	writeJSON(w, http.StatusOK, map[string]any{"user": target})
}

// SyncPosts handles POST /api/admin/sync: an explicit reconcile whose
// failures are surfaced, unlike the throttled background pass.
func (h *Handler) SyncPosts(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	res, err := h.syncer.SyncAs(r.Context(), &u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) uniqueSlug(r *http.Request, title string) (string, error) {
	slug := markdown.Slug(title)
	taken, err := h.store.SlugExists(r.Context(), slug)
	if err != nil {
		return "", err
	}
	if taken {
		slug = slug + "-" + strconv.FormatInt(time.Now().Unix(), 10)
	}
	return slug, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
