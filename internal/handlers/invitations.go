// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"lumina/internal/models"
	"lumina/internal/notify"
	"lumina/internal/store"
)

// Invitations groups the invitation lifecycle handlers. Accept is the
// only public one; the rest require a senior-enough session.
type Invitations struct {
	invitations *store.InvitationStore
	users       *store.UserStore
	notifier    notify.Notifier
}

// NewInvitations creates a new Invitations handler group.
func NewInvitations(invitations *store.InvitationStore, users *store.UserStore, notifier notify.Notifier) *Invitations {
	return &Invitations{invitations: invitations, users: users, notifier: notifier}
}

// List returns all invitations.
func (h *Invitations) List(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitations.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

type inviteRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Invite creates a pending invitation and announces it for the mailer.
func (h *Invitations) Invite(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateEmail(req.Email); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	invitation, err := h.invitations.Invite(actor, req.Email, req.Role)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := h.notifier.Publish(r.Context(), notify.QueueInvitationCreated, notify.InvitationCreatedEvent{
		InvitationID: invitation.ID,
		Email:        invitation.Email,
		TargetRole:   string(invitation.TargetRole),
		InvitedBy:    invitation.InvitedBy,
		CreatedAt:    invitation.CreatedAt,
	}); err != nil {
		slog.Warn("invitation event publish failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, invitation)
}

type acceptRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// Accept consumes a pending invitation and creates the account. Public:
// the caller proves possession of the invitation by knowing its id.
func (h *Invitations) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req acceptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateRegistration(req.DisplayName, req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.invitations.Accept(id, req.DisplayName, req.Password)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Revoke withdraws a pending invitation.
func (h *Invitations) Revoke(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.invitations.Revoke(actor, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
