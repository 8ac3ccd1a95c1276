// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment.
// approved and rejected are terminal; nothing leaves them.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

// Terminal reports whether the status accepts no further transitions.
func (s CommentStatus) Terminal() bool {
	return s == CommentStatusApproved || s == CommentStatusRejected
}

// Comment is a reply on a post. Parent/child forms a tree scoped to one
// post: a reply's parent must belong to the same post, at any nesting depth.
// A comment's status is independent of its children — rejecting a parent
// does not touch the replies.
//
// Every comment starts at pending regardless of who wrote it; only an
// explicit approve moves it to approved.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	PostID    uuid.UUID     `json:"post_id"`
	AuthorID  uuid.UUID     `json:"author_id"`
	ParentID  *uuid.UUID    `json:"parent_id,omitempty"`
	Body      string        `json:"body"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Virtual field populated by store methods.
	Replies []Comment `json:"replies,omitempty"`
}
