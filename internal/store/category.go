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

const categoryColumns = `id, name, slug, description, parent_id, depth, sort_order, created_at, updated_at`

// CategoryStore manages the category forest. Parent links are stored as
// nullable id references; depth is materialized on every row so reads
// never walk the tree, and reparenting shifts the whole moved subtree's
// depth in one transaction.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.Depth, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// List returns all categories ordered by depth then sort_order, with post counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.depth,
		       c.sort_order, c.created_at, c.updated_at,
		       COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.depth, c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Depth,
			&c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree structure.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Children = buildTree(flat, &c.ID)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Create inserts a new category under the optional parent. Depth is
// computed from the parent (roots sit at 0) and sort order defaults to
// the end of the new sibling list.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	depth := 0
	if c.ParentID != nil {
		parent, err := s.FindByID(*c.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("create category: parent %s: %w", *c.ParentID, ErrNotFound)
		}
		depth = parent.Depth + 1
	}

	exists, err := s.slugExists(c.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("create category %q: %w", c.Slug, ErrDuplicateSlug)
	}

	if c.SortOrder == 0 {
		next, err := s.NextSortOrder(c.ParentID)
		if err != nil {
			return nil, err
		}
		c.SortOrder = next
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, depth, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, depth, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create category %q: %w", c.Slug, ErrDuplicateSlug)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// slugExists reports whether any category already uses the slug.
func (s *CategoryStore) slugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Reparent moves a category (and its whole subtree) under newParent, or to
// the root when newParent is nil. The ancestor chain of the new parent is
// walked upward first: finding the moved node on it means the move would
// close a cycle and nothing is written. Depth of every descendant shifts
// by the same delta inside one transaction, so concurrent readers never
// see a torn tree.
func (s *CategoryStore) Reparent(id uuid.UUID, newParentID *uuid.UUID) error {
	node, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("reparent: category %s: %w", id, ErrNotFound)
	}

	newDepth := 0
	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("reparent %s under itself: %w", id, ErrCycle)
		}
		parent, err := s.FindByID(*newParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("reparent: new parent %s: %w", *newParentID, ErrNotFound)
		}
		onChain, err := s.onAncestorChain(parent, id)
		if err != nil {
			return err
		}
		if onChain {
			return fmt.Errorf("reparent %s under descendant %s: %w", id, parent.ID, ErrCycle)
		}
		newDepth = parent.Depth + 1
	}

	delta := newDepth - node.Depth

	// The node joins the destination sibling list at the end so sort_order
	// stays unique among its new siblings.
	nextOrder, err := s.NextSortOrder(newParentID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE categories SET parent_id = $1, depth = $2, sort_order = $5, updated_at = NOW()
		WHERE id = $3 AND depth = $4
	`, newParentID, newDepth, node.ID, node.Depth, nextOrder)
	if err != nil {
		return fmt.Errorf("reparent node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reparent node: %w", err)
	}
	if affected == 0 {
		// Someone moved the node between our read and the write.
		return fmt.Errorf("reparent %s: %w", node.ID, ErrConflict)
	}

	if delta != 0 {
		// Shift the whole subtree below the moved node by the same delta.
		_, err = tx.Exec(`
			WITH RECURSIVE subtree AS (
				SELECT id FROM categories WHERE parent_id = $1
				UNION ALL
				SELECT c.id FROM categories c JOIN subtree s ON c.parent_id = s.id
			)
			UPDATE categories SET depth = depth + $2, updated_at = NOW()
			WHERE id IN (SELECT id FROM subtree)
		`, node.ID, delta)
		if err != nil {
			return fmt.Errorf("shift subtree depth: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reparent: %w", err)
	}
	return nil
}

// onAncestorChain walks parent links upward from start and reports whether
// target appears on the chain. The walk is bounded by the stored depth, so
// a corrupted loop cannot hang it.
func (s *CategoryStore) onAncestorChain(start *models.Category, target uuid.UUID) (bool, error) {
	current := start
	for steps := start.Depth + 1; steps > 0 && current != nil; steps-- {
		if current.ID == target {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		next, err := s.FindByID(*current.ParentID)
		if err != nil {
			return false, err
		}
		current = next
	}
	return false, nil
}

// Delete removes a category. With children it fails with ErrNotEmpty
// unless cascade is set, in which case the children are reparented to the
// deleted node's parent (keeping the forest shape) before the delete, all
// in one transaction.
func (s *CategoryStore) Delete(id uuid.UUID, cascade bool) error {
	node, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
	}

	var children int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&children); err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if children > 0 && !cascade {
		return fmt.Errorf("delete category %s with %d children: %w", id, children, ErrNotEmpty)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if children > 0 {
		// Everything below the node moves up one level.
		_, err = tx.Exec(`
			WITH RECURSIVE subtree AS (
				SELECT id FROM categories WHERE parent_id = $1
				UNION ALL
				SELECT c.id FROM categories c JOIN subtree s ON c.parent_id = s.id
			)
			UPDATE categories SET depth = depth - 1, updated_at = NOW()
			WHERE id IN (SELECT id FROM subtree)
		`, id)
		if err != nil {
			return fmt.Errorf("lift subtree: %w", err)
		}

		// Renumber the orphaned children after the surviving siblings so
		// sort_order stays unique in the merged sibling list.
		var maxOrder sql.NullInt64
		if node.ParentID == nil {
			err = tx.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL AND id <> $1`, id).Scan(&maxOrder)
		} else {
			err = tx.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1 AND id <> $2`, *node.ParentID, id).Scan(&maxOrder)
		}
		if err != nil {
			return fmt.Errorf("max sibling order: %w", err)
		}
		base := 0
		if maxOrder.Valid {
			base = int(maxOrder.Int64) + 1
		}
		_, err = tx.Exec(`
			UPDATE categories
			SET parent_id = $1,
			    sort_order = $2 + rank.pos,
			    updated_at = NOW()
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order) - 1 AS pos
				FROM categories WHERE parent_id = $3
			) rank
			WHERE categories.id = rank.id
		`, node.ParentID, base, id)
		if err != nil {
			return fmt.Errorf("reparent children: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
