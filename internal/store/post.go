// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lumina/internal/models"
	"lumina/internal/policy"
)

const postColumns = `id, title, slug, body, excerpt, status, author_id,
	category_id, published_at, created_at, updated_at`

// PostStore handles post persistence and the post lifecycle machine.
// Status never changes through Update; Transition is the only door.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanPost scans a posts row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Status,
		&p.AuthorID, &p.CategoryID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// List returns all posts ordered by creation date descending.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByStatus returns posts in the given lifecycle state, newest first.
// Published posts order by publication date instead.
func (s *PostStore) ListByStatus(status models.PostStatus) ([]models.Post, error) {
	order := "created_at DESC"
	if status == models.PostStatusPublished {
		order = "published_at DESC NULLS LAST"
	}
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts WHERE status = $1 ORDER BY `+order, status)
	if err != nil {
		return nil, fmt.Errorf("list posts by status: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByAuthor returns every post owned by the author, newest first.
func (s *PostStore) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Create inserts a new draft post owned by the author. Every post enters
// the lifecycle at draft; publishing is a separate transition.
func (s *PostStore) Create(author *models.User, p *models.Post) (*models.Post, error) {
	if !author.IsActive() {
		return nil, fmt.Errorf("create post: author is %s: %w", author.Status, ErrUnauthorized)
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (title, slug, body, excerpt, status, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Body, p.Excerpt, models.PostStatusDraft, author.ID, p.CategoryID,
	)
	result, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create post %q: %w", p.Slug, ErrDuplicateSlug)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies a post's editable fields. Status and published_at are
// deliberately not touched here.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, body = $3, excerpt = $4, category_id = $5,
			updated_at = NOW()
		WHERE id = $6
	`, p.Title, p.Slug, p.Body, p.Excerpt, p.CategoryID, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update post %q: %w", p.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Transition moves a post to a new lifecycle state on behalf of actor.
//
// Authorization goes through policy.CanTransitionPost and is evaluated
// before any write: an invalid edge or an insufficient actor yields
// ErrForbidden with the row untouched. The write itself is guarded on the
// state we read, so a concurrent transition on the same post surfaces as
// ErrConflict rather than a silently skipped or doubled edge.
//
// published_at is set on the first arrival in published and never
// afterwards; unpublish/republish cycles keep the original timestamp.
func (s *PostStore) Transition(actor *models.User, id uuid.UUID, to models.PostStatus) (*models.Post, error) {
	if !actor.IsActive() {
		return nil, fmt.Errorf("transition post: actor is %s: %w", actor.Status, ErrUnauthorized)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("transition post: unknown status %q: %w", to, ErrForbidden)
	}

	post, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("transition post %s: %w", id, ErrNotFound)
	}

	isOwner := post.AuthorID == actor.ID
	if !policy.CanTransitionPost(actor.Role, isOwner, post.Status, to) {
		return nil, fmt.Errorf("transition post %s -> %s as %s: %w",
			post.Status, to, actor.Role, ErrForbidden)
	}

	row := s.db.QueryRow(`
		UPDATE posts SET
			status = $1,
			published_at = CASE
				WHEN $1 = 'published' AND published_at IS NULL THEN NOW()
				ELSE published_at
			END,
			updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+postColumns,
		to, post.ID, post.Status,
	)
	result, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transition post %s: %w", post.ID, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("transition post: %w", err)
	}
	return result, nil
}

// Delete removes a post by ID. Comments and tag associations go with it
// through foreign-key cascades.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
