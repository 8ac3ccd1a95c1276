// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lumina/internal/cache"
	"lumina/internal/models"
	"lumina/internal/slug"
	"lumina/internal/store"
)

// Taxonomy groups category and tag handlers. Category mutations drop the
// cached tree so readers never see a stale hierarchy for longer than one
// request.
type Taxonomy struct {
	categories *store.CategoryStore
	tags       *store.TagStore
	tree       *cache.TaxonomyCache
}

// NewTaxonomy creates a new Taxonomy handler group.
func NewTaxonomy(categories *store.CategoryStore, tags *store.TagStore, tree *cache.TaxonomyCache) *Taxonomy {
	return &Taxonomy{categories: categories, tags: tags, tree: tree}
}

// Tree returns the nested category hierarchy, served from Valkey when
// warm.
func (h *Taxonomy) Tree(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.tree.GetTree(r.Context()); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	tree, err := h.categories.Tree()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.tree.SetTree(r.Context(), tree)
	writeJSON(w, http.StatusOK, tree)
}

// ListCategories returns the flat category list with post counts.
func (h *Taxonomy) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// CreateCategory adds a category, deriving the slug from the name when
// none is supplied.
func (h *Taxonomy) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	} else if !slug.Valid(req.Slug) {
		writeError(w, http.StatusBadRequest, "slug must be lowercase alphanumerics and hyphens")
		return
	}

	created, err := h.categories.Create(&models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.tree.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

type reparentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// Reparent moves a category subtree under a new parent (null for root).
func (h *Taxonomy) Reparent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reparentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.categories.Reparent(id, req.ParentID); err != nil {
		writeStoreError(w, err)
		return
	}

	h.tree.Invalidate(r.Context())

	moved, err := h.categories.FindByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

// DeleteCategory removes a category. With ?cascade=true its children are
// lifted into the deleted node's place first.
func (h *Taxonomy) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cascade := r.URL.Query().Get("cascade") == "true"

	if err := h.categories.Delete(id, cascade); err != nil {
		writeStoreError(w, err)
		return
	}

	h.tree.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ListTags returns all tags.
func (h *Taxonomy) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

type tagRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateTag adds a tag.
func (h *Taxonomy) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}

	created, err := h.tags.Create(req.Name, req.Slug)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AttachTag links a tag to a post. Repeats are no-ops.
func (h *Taxonomy) AttachTag(w http.ResponseWriter, r *http.Request) {
	postID, tagID, ok := postTagIDs(w, r)
	if !ok {
		return
	}
	if err := h.tags.Attach(postID, tagID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DetachTag unlinks a tag from a post. Repeats are no-ops.
func (h *Taxonomy) DetachTag(w http.ResponseWriter, r *http.Request) {
	postID, tagID, ok := postTagIDs(w, r)
	if !ok {
		return
	}
	if err := h.tags.Detach(postID, tagID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func postTagIDs(w http.ResponseWriter, r *http.Request) (postID, tagID uuid.UUID, ok bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return uuid.Nil, uuid.Nil, false
	}
	tagID, err = uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return uuid.Nil, uuid.Nil, false
	}
	return postID, tagID, true
}
