package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GitHubRepo handles GET /api/github/repo/{owner}/{repo}.
func (h *Handler) GitHubRepo(w http.ResponseWriter, r *http.Request) {
	info, err := h.github.Repo(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GitHubReadme handles GET /api/github/readme/{owner}/{repo}.
func (h *Handler) GitHubReadme(w http.ResponseWriter, r *http.Request) {
	content, err := h.github.Readme(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

// GitHubFile handles GET /api/github/file/{owner}/{repo}/*.
func (h *Handler) GitHubFile(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("file path is required"))
		return
	}
	content, err := h.github.FileContent(r.Context(),
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), path, r.URL.Query().Get("branch"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

// GitHubTree handles GET /api/github/tree/{owner}/{repo}.
func (h *Handler) GitHubTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.github.Tree(r.Context(),
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), r.URL.Query().Get("branch"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": tree})
}

// GitHubSearch handles GET /api/github/search.
func (h *Handler) GitHubSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	res, err := h.github.Search(r.Context(), q, perPage)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GitHubUserRepos handles GET /api/github/user/{username}/repos.
func (h *Handler) GitHubUserRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.github.UserRepos(r.Context(), chi.URLParam(r, "username"), 30)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}
