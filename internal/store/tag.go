// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lumina/internal/models"
)

// TagStore manages the flat tag set and the post/tag association table.
// Attach and Detach are idempotent: repeating either is a no-op.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Create inserts a new tag.
func (s *TagStore) Create(name, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRow(`
		INSERT INTO tags (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug, created_at
	`, name, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create tag %q: %w", slug, ErrDuplicateSlug)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &t, nil
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRow(`
		SELECT id, name, slug, created_at FROM tags WHERE slug = $1
	`, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return &t, nil
}

// List returns all tags ordered by name.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, slug, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Attach associates a tag with a post. Attaching an already-attached tag
// is a no-op, not an error.
func (s *TagStore) Attach(postID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO post_tags (post_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`, postID, tagID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// Detach removes a tag from a post. Detaching an absent tag is a no-op.
func (s *TagStore) Detach(postID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2
	`, postID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// ListByPost returns the tags attached to a post, ordered by name.
func (s *TagStore) ListByPost(postID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list tags by post: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
