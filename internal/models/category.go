// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the hierarchical category forest.
// Posts can have at most one category assigned.
//
// Depth is stored, not derived: it always equals parent depth + 1 (0 for
// roots), and reparenting recomputes it for the whole moved subtree in one
// transaction. SortOrder is unique among siblings; Slug is globally unique.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Depth       int        `json:"depth"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children  []Category `json:"children,omitempty"`
	PostCount int        `json:"post_count"`
}

// IsRoot returns true for categories without a parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
