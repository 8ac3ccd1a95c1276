// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Lumina API. It organizes routes into public, authenticated, and
// admin-only groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumina/internal/handlers"
	"lumina/internal/middleware"
	"lumina/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessionStore *session.Store,
	loginLimiter *middleware.RateLimiter,
	auth *handlers.Auth,
	users *handlers.Users,
	posts *handlers.Posts,
	taxonomy *handlers.Taxonomy,
	comments *handlers.Comments,
	invitations *handlers.Invitations,
	audit *handlers.Audit,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request. LoadSession runs
	// before Logger so request logs carry the acting user.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.Logger)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Public read surface.
	r.Get("/posts", posts.ListPublished)
	r.Get("/posts/{id}/comments", comments.ListByPost)
	r.Get("/taxonomy/tree", taxonomy.Tree)
	r.Get("/categories", taxonomy.ListCategories)
	r.Get("/tags", taxonomy.ListTags)

	// Login is rate-limited per client IP to slow credential stuffing.
	r.With(loginLimiter.Middleware).Post("/auth/login", auth.Login)

	// Accepting an invitation happens before the invitee has an account.
	r.Post("/invitations/{id}/accept", invitations.Accept)

	// Session management — requires auth but NOT completed 2FA, so a
	// freshly logged-in user can finish enrollment.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/auth/2fa/setup", auth.TwoFASetup)
		r.Post("/auth/2fa/verify", auth.TwoFAVerify)
		r.Post("/auth/logout", auth.Logout)
		r.Get("/auth/me", auth.Me)
	})

	// Authenticated + 2FA-verified content management.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		// Posts
		r.Route("/admin/posts", func(r chi.Router) {
			r.Get("/", posts.List)
			r.Post("/", posts.Create)
			r.Get("/{id}", posts.Get)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Delete)
			r.Post("/{id}/publish", posts.Publish)
			r.Post("/{id}/unpublish", posts.Unpublish)
			r.Post("/{id}/archive", posts.Archive)
			r.Post("/{id}/restore", posts.Restore)
			r.Put("/{id}/tags/{tagID}", taxonomy.AttachTag)
			r.Delete("/{id}/tags/{tagID}", taxonomy.DetachTag)
		})

		// Comments
		r.Post("/posts/{id}/comments", comments.Create)
		r.Route("/admin/comments", func(r chi.Router) {
			r.Get("/pending", comments.PendingCount)
			r.Post("/{id}/approve", comments.Approve)
			r.Post("/{id}/reject", comments.Reject)
		})

		// Taxonomy
		r.Route("/admin/categories", func(r chi.Router) {
			r.Post("/", taxonomy.CreateCategory)
			r.Post("/{id}/reparent", taxonomy.Reparent)
			r.Delete("/{id}", taxonomy.DeleteCategory)
		})
		r.Post("/admin/tags", taxonomy.CreateTag)

		// User management and invitations. Who may act on whom is
		// decided by role seniority inside the store, so these are not
		// gated to admins here.
		r.Route("/admin/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Get("/{id}", users.Get)
			r.Delete("/{id}", users.Delete)
			r.Post("/{id}/role", users.ChangeRole)
			r.Get("/{id}/history", users.History)
			r.Get("/{id}/role-at", users.RoleAt)
			r.Post("/{id}/suspend", users.Suspend)
			r.Post("/{id}/reinstate", users.Reinstate)
			r.With(middleware.RequireAdmin).Get("/{id}/logins", audit.ListByUser)
		})

		r.Route("/admin/invitations", func(r chi.Router) {
			r.Get("/", invitations.List)
			r.Post("/", invitations.Invite)
			r.Delete("/{id}", invitations.Revoke)
		})

		// The site-wide login audit trail — admin only.
		r.With(middleware.RequireAdmin).Get("/admin/audit/logins", audit.ListRange)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
