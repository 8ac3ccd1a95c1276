// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"lumina/internal/models"
	"lumina/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role models.Role, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@lumina.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses. This simulates the state
// after LoadSession has run without needing a real Valkey store.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(models.RoleAdmin, true)
		ctx := ctxWithSession(context.Background(), sess)

		got := SessionFromCtx(ctx)
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Role != sess.Role {
			t.Errorf("Role: got %q, want %q", got.Role, sess.Role)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects unauthenticated with 401", func(t *testing.T) {
		next, called := okHandler()
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/admin/posts", nil)

		RequireAuth(next).ServeHTTP(w, r)

		if *called {
			t.Error("next handler should not run without a session")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q, want application/json", ct)
		}
	})

	t.Run("passes authenticated requests through", func(t *testing.T) {
		next, called := okHandler()
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/admin/posts", nil)
		r = r.WithContext(ctxWithSession(r.Context(), newTestSession(models.RoleAuthor, true)))

		RequireAuth(next).ServeHTTP(w, r)

		if !*called {
			t.Error("next handler should run with a session")
		}
	})
}

func TestRequire2FA(t *testing.T) {
	t.Run("rejects incomplete 2FA with 403", func(t *testing.T) {
		next, called := okHandler()
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/admin/posts", nil)
		r = r.WithContext(ctxWithSession(r.Context(), newTestSession(models.RoleEditor, false)))

		Require2FA(next).ServeHTTP(w, r)

		if *called {
			t.Error("next handler should not run before 2FA completes")
		}
		if w.Code != http.StatusForbidden {
			t.Errorf("status: got %d, want 403", w.Code)
		}
	})

	t.Run("passes completed 2FA through", func(t *testing.T) {
		next, called := okHandler()
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/admin/posts", nil)
		r = r.WithContext(ctxWithSession(r.Context(), newTestSession(models.RoleEditor, true)))

		Require2FA(next).ServeHTTP(w, r)

		if !*called {
			t.Error("next handler should run after 2FA")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
		wantCalled bool
	}{
		{"admin passes", newTestSession(models.RoleAdmin, true), http.StatusOK, true},
		{"editor rejected", newTestSession(models.RoleEditor, true), http.StatusForbidden, false},
		{"moderator rejected", newTestSession(models.RoleModerator, true), http.StatusForbidden, false},
		{"no session rejected", nil, http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/admin/users", nil)
			if tt.sess != nil {
				r = r.WithContext(ctxWithSession(r.Context(), tt.sess))
			}

			RequireAdmin(next).ServeHTTP(w, r)

			if *called != tt.wantCalled {
				t.Errorf("handler called: got %v, want %v", *called, tt.wantCalled)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
