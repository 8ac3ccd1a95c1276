// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"lumina/internal/models"
	"lumina/internal/notify"
	"lumina/internal/slug"
	"lumina/internal/store"
)

// Posts groups post lifecycle handlers.
type Posts struct {
	posts    *store.PostStore
	users    *store.UserStore
	tags     *store.TagStore
	notifier notify.Notifier
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *store.PostStore, users *store.UserStore, tags *store.TagStore, notifier notify.Notifier) *Posts {
	return &Posts{posts: posts, users: users, tags: tags, notifier: notifier}
}

// List returns all posts for the editorial view.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	var (
		posts []models.Post
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		posts, err = h.posts.ListByStatus(models.PostStatus(status))
	} else {
		posts, err = h.posts.List()
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// ListPublished returns published posts for public consumption, newest
// publication first.
func (h *Posts) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByStatus(models.PostStatusPublished)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get returns a post with its tags.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := h.posts.FindByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	tags, err := h.tags.ListByPost(post.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	post.Tags = tags

	writeJSON(w, http.StatusOK, post)
}

type postRequest struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	Excerpt    *string    `json:"excerpt"`
	CategoryID *uuid.UUID `json:"category_id"`
}

// Create adds a new draft owned by the caller.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validatePost(req.Title, req.Slug, req.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}

	created, err := h.posts.Create(actor, &models.Post{
		Title:      req.Title,
		Slug:       req.Slug,
		Body:       req.Body,
		Excerpt:    req.Excerpt,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update edits a post's content fields. Lifecycle state is only reachable
// through the transition endpoints.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validatePost(req.Title, req.Slug, req.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	post.Title = req.Title
	if req.Slug != "" {
		post.Slug = req.Slug
	}
	post.Body = req.Body
	post.Excerpt = req.Excerpt
	post.CategoryID = req.CategoryID

	if err := h.posts.Update(post); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Publish moves a draft to published.
func (h *Posts) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.PostStatusPublished)
}

// Unpublish moves a published post back to draft.
func (h *Posts) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.PostStatusDraft)
}

// Archive retires a published post.
func (h *Posts) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.PostStatusArchived)
}

// Restore brings an archived post back as a draft.
func (h *Posts) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.PostStatusDraft)
}

func (h *Posts) transition(w http.ResponseWriter, r *http.Request, to models.PostStatus) {
	actor := resolveActor(w, r, h.users)
	if actor == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	before, err := h.posts.FindByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	post, err := h.posts.Transition(actor, id, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// First arrival in published announces the post.
	if to == models.PostStatusPublished && before != nil && before.PublishedAt == nil && post.PublishedAt != nil {
		if err := h.notifier.Publish(r.Context(), notify.QueuePostPublished, notify.PostPublishedEvent{
			PostID:      post.ID,
			Slug:        post.Slug,
			AuthorID:    post.AuthorID,
			PublishedAt: *post.PublishedAt,
		}); err != nil {
			slog.Warn("post published event publish failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.posts.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
