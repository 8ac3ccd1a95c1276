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

const commentColumns = `id, post_id, author_id, parent_id, body, status, created_at, updated_at`

// CommentStore handles comment persistence and moderation. Every comment
// is born pending — creation never skips the moderation gate, not even for
// admins — and approved/rejected are terminal.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// scanComment scans a comments row into a Comment struct.
func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Body, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a comment by its UUID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a new pending comment on a post. A reply's parent must
// belong to the same post; the comment tree never crosses post boundaries.
func (s *CommentStore) Create(author *models.User, c *models.Comment) (*models.Comment, error) {
	if !author.IsActive() {
		return nil, fmt.Errorf("create comment: author is %s: %w", author.Status, ErrUnauthorized)
	}

	if c.ParentID != nil {
		parent, err := s.FindByID(*c.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != c.PostID {
			return nil, fmt.Errorf("create comment: parent %s not in post %s: %w",
				*c.ParentID, c.PostID, ErrNotFound)
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, parent_id, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+commentColumns,
		c.PostID, author.ID, c.ParentID, c.Body, models.CommentStatusPending,
	)
	result, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return result, nil
}

// Moderate moves a pending comment to approved or rejected on behalf of
// actor. Both outcomes are terminal; a second moderation attempt fails
// with ErrForbidden. Rejecting a parent leaves its replies untouched.
func (s *CommentStore) Moderate(actor *models.User, id uuid.UUID, to models.CommentStatus) (*models.Comment, error) {
	if !actor.IsActive() {
		return nil, fmt.Errorf("moderate comment: actor is %s: %w", actor.Status, ErrUnauthorized)
	}
	if !policy.CanModerateComment(actor.Role) {
		return nil, fmt.Errorf("moderate comment as %s: %w", actor.Role, ErrUnauthorized)
	}
	if !to.Terminal() {
		return nil, fmt.Errorf("moderate comment to %q: %w", to, ErrForbidden)
	}

	comment, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("moderate comment %s: %w", id, ErrNotFound)
	}
	if comment.Status != models.CommentStatusPending {
		return nil, fmt.Errorf("moderate comment in %s: %w", comment.Status, ErrForbidden)
	}

	// Guarded on pending so two racing moderators cannot both win.
	row := s.db.QueryRow(`
		UPDATE comments SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+commentColumns,
		to, comment.ID, models.CommentStatusPending,
	)
	result, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("moderate comment %s: %w", comment.ID, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("moderate comment: %w", err)
	}
	return result, nil
}

// ListByPost returns the comments of a post as a nested reply tree,
// oldest first at each level. Pass a status to filter (e.g. only approved
// for public views); the zero value returns every comment.
func (s *CommentStore) ListByPost(postID uuid.UUID, status models.CommentStatus) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`
	args := []any{postID}
	if status != "" {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 AND status = $2 ORDER BY created_at ASC, id ASC`
		args = append(args, status)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var flat []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		flat = append(flat, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildCommentTree(flat, nil), nil
}

// buildCommentTree nests replies under their parents. Replies whose parent
// fell out of a status filter surface at the top level rather than vanish.
func buildCommentTree(flat []models.Comment, parentID *uuid.UUID) []models.Comment {
	present := make(map[uuid.UUID]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}

	var result []models.Comment
	for _, c := range flat {
		orphan := c.ParentID != nil && !present[*c.ParentID]
		if ptrEqual(c.ParentID, parentID) || (parentID == nil && orphan) {
			c.Replies = childComments(flat, c.ID)
			result = append(result, c)
		}
	}
	return result
}

func childComments(flat []models.Comment, parentID uuid.UUID) []models.Comment {
	var result []models.Comment
	for _, c := range flat {
		if c.ParentID != nil && *c.ParentID == parentID {
			c.Replies = childComments(flat, c.ID)
			result = append(result, c)
		}
	}
	return result
}

// CountPending returns the number of comments awaiting moderation.
func (s *CommentStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending comments: %w", err)
	}
	return count, nil
}
