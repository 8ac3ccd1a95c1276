// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lumina/internal/middleware"
	"lumina/internal/models"
	"lumina/internal/notify"
	"lumina/internal/store"
)

// Users groups account and role management handlers.
type Users struct {
	users    *store.UserStore
	notifier notify.Notifier
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore, notifier notify.Notifier) *Users {
	return &Users{users: users, notifier: notifier}
}

// resolveActor loads the acting user named by the session. The row is
// loaded fresh so suspensions and role changes apply immediately, not at
// next login. Writes the error response and returns nil on failure.
func resolveActor(w http.ResponseWriter, r *http.Request, users *store.UserStore) *models.User {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := users.FindByID(sess.UserID)
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return nil
	}
	return user
}

// pathID parses the {id} url parameter as a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// List returns all accounts.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get returns a single account.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changeRoleRequest struct {
	Role models.Role `json:"role"`
	Note string      `json:"note"`
}

// ChangeRole moves a user to a new role. Seniority checks and the history
// append happen in the store; success also emits a role.changed event.
func (h *Users) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.users.ChangeRole(actor, id, req.Role, req.Note)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// Best-effort: the role change has committed either way.
	if err := h.notifier.Publish(r.Context(), notify.QueueRoleChanged, notify.RoleChangedEvent{
		UserID:    entry.UserID,
		FromRole:  string(entry.FromRole),
		ToRole:    string(entry.ToRole),
		ChangedBy: entry.ChangedBy,
		ChangedAt: entry.ChangedAt,
	}); err != nil {
		slog.Warn("role change event publish failed", "error", err)
	}

	writeJSON(w, http.StatusOK, entry)
}

// History returns a user's role change ledger, oldest first.
func (h *Users) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	history, err := h.users.History(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// RoleAt reconstructs a user's role at the instant given by the "at"
// query parameter (RFC 3339).
func (h *Users) RoleAt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing at parameter")
		return
	}

	role, err := h.users.RoleAt(id, at)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "at": at, "role": role})
}

// Suspend moves an account to suspended.
func (h *Users) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusSuspended)
}

// Reinstate moves a suspended account back to active.
func (h *Users) Reinstate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.UserStatusActive)
}

func (h *Users) setStatus(w http.ResponseWriter, r *http.Request, status models.UserStatus) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.SetStatus(actor, id, status); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "status": status})
}

// Delete removes an account with no remaining content. Seniority over the
// target is checked in the store.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(actor, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
