package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted. Session
// load/save and request logging are applied by the caller; everything
// here assumes the session manager is already in the chain.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.WithUser)

	// Public content. Reads trigger a throttled reconcile pass so file
	// edits show up without an explicit sync.
	r.Group(func(r chi.Router) {
		r.Use(h.BackgroundSync)
		r.Get("/site", h.Site)
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{slug}", h.GetPost)
		r.Get("/categories", h.ListCategories)
	})

	// Auth.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	// Theme switching works for anonymous sessions too.
	r.Put("/theme", h.SetTheme)

	// Account.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireUser)
		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Post("/markdown/preview", h.Preview)
	})

	// Admin.
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/posts", h.AdminListPosts)
		r.Post("/posts", h.CreatePost)
		r.Put("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Get("/users", h.ListUsers)
		r.Post("/users/{id}/toggle-admin", h.ToggleAdmin)
		r.Post("/sync", h.SyncPosts)
	})

	// GitHub proxy.
	r.Route("/github", func(r chi.Router) {
		r.Get("/repo/{owner}/{repo}", h.GitHubRepo)
		r.Get("/readme/{owner}/{repo}", h.GitHubReadme)
		r.Get("/file/{owner}/{repo}/*", h.GitHubFile)
		r.Get("/tree/{owner}/{repo}", h.GitHubTree)
		r.Get("/search", h.GitHubSearch)
		r.Get("/user/{username}/repos", h.GitHubUserRepos)
	})

	return r
}
