// Package api implements the inkwell JSON API using chi.
package api

import (
	"context"
	"net/http"

	"github.com/mengfw/inkwell/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Session keys.
const (
	sessionKeyUserID = "user_id"
	sessionKeyTheme  = "theme"
)

// WithUser loads the logged-in user (if any) from the session into the
// request context. It never rejects a request.
func (h *Handler) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := h.sessions.GetInt64(r.Context(), sessionKeyUserID)
		if userID != 0 {
			if u, err := h.store.UserByID(r.Context(), userID); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a logged-in user.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless the logged-in user is an admin.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("login required"))
			return
		}
		if !u.IsAdmin {
			writeJSON(w, http.StatusForbidden, errorBody("admin required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BackgroundSync triggers a throttled reconcile pass before serving
// content requests, so file edits show up without an explicit sync.
func (h *Handler) BackgroundSync(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.syncer.MaybeSync(r.Context())
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}
