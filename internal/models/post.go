// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the lifecycle state of a post.
//
// The machine is: draft -> published -> archived, with published -> draft
// (unpublish) and archived -> draft (restore) as the only backward edges.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether the status is a known lifecycle state.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post represents an article in the CMS. It is owned by its author but
// mutable by any actor whose role authorizes the transition.
//
// PublishedAt records the FIRST entry into published and is never cleared:
// publish/unpublish cycles after the first leave it unchanged.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Status      PostStatus `json:"status"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual field populated by store methods.
	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
