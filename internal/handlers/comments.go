// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lumina/internal/models"
	"lumina/internal/store"
)

// Comments groups comment submission and moderation handlers.
type Comments struct {
	comments *store.CommentStore
	users    *store.UserStore
}

// NewComments creates a new Comments handler group.
func NewComments(comments *store.CommentStore, users *store.UserStore) *Comments {
	return &Comments{comments: comments, users: users}
}

type commentRequest struct {
	PostID   uuid.UUID  `json:"post_id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Body     string     `json:"body"`
}

// Create submits a comment. Every comment enters the moderation queue
// pending, whoever wrote it.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateComment(req.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.comments.Create(actor, &models.Comment{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Body:     req.Body,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Approve resolves a pending comment as approved.
func (h *Comments) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.CommentStatusApproved)
}

// Reject resolves a pending comment as rejected.
func (h *Comments) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.CommentStatusRejected)
}

func (h *Comments) moderate(w http.ResponseWriter, r *http.Request, to models.CommentStatus) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	comment, err := h.comments.Moderate(actor, id, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// ListByPost returns a post's comment thread. Public callers see the
// approved tree; moderators pass ?status=pending to work the queue.
func (h *Comments) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	status := models.CommentStatusApproved
	if q := r.URL.Query().Get("status"); q != "" {
		status = models.CommentStatus(q)
	}

	comments, err := h.comments.ListByPost(postID, status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// PendingCount reports the moderation queue size.
func (h *Comments) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.comments.CountPending()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending": count})
}
