// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lumina/internal/models"
	"lumina/internal/policy"
)

const userColumns = `id, email, password_hash, display_name, role, status,
	totp_secret, totp_enabled, version, created_at, updated_at`

// UserStore handles all user-related database operations, including the
// role-change transaction and the append-only role history.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// scanUser scans a users row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.Status,
		&u.TOTPSecret, &u.TOTPEnabled, &u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new active user with a bcrypt-hashed password.
func (s *UserStore) Create(email, password, displayName string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		email, string(hash), displayName, role, models.UserStatusActive,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create user %s: %w", email, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// ChangeRole moves target to newRole on behalf of actor, appending a
// RoleHistory entry in the same transaction. The role update and the
// history row happen together or not at all.
//
// Authorization: actor must be active and strictly senior to both the
// target's current role and newRole. Concurrent changes on the same user
// are detected through the row's version column; the loser gets ErrConflict
// and may retry after re-reading.
func (s *UserStore) ChangeRole(actor *models.User, targetID uuid.UUID, newRole models.Role, note string) (*models.RoleHistory, error) {
	if !actor.IsActive() {
		return nil, fmt.Errorf("change role: actor %s is %s: %w", actor.ID, actor.Status, ErrUnauthorized)
	}
	if !newRole.Valid() {
		return nil, fmt.Errorf("change role: unknown role %q: %w", newRole, ErrForbidden)
	}

	target, err := s.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("change role: target %s: %w", targetID, ErrNotFound)
	}
	if target.Role == newRole {
		return nil, fmt.Errorf("change role: %w", ErrNoChange)
	}
	if !policy.CanChangeRole(actor.Role, target.Role, newRole) {
		return nil, fmt.Errorf("change role: %s may not move %s to %s: %w",
			actor.Role, target.Role, newRole, ErrUnauthorized)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Guarded update: if another writer bumped the version since our read,
	// zero rows match and the whole transaction is abandoned.
	res, err := tx.Exec(`
		UPDATE users SET role = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`, newRole, target.ID, target.Version)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("change role on %s: %w", target.ID, ErrConflict)
	}

	var h models.RoleHistory
	err = tx.QueryRow(`
		INSERT INTO role_history (user_id, from_role, to_role, changed_by, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, from_role, to_role, changed_by, note, changed_at
	`, target.ID, target.Role, newRole, actor.ID, note).Scan(
		&h.ID, &h.UserID, &h.FromRole, &h.ToRole, &h.ChangedBy, &h.Note, &h.ChangedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append role history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit role change: %w", err)
	}
	return &h, nil
}

// History returns the full role-change ledger for a user, oldest first.
func (s *UserStore) History(userID uuid.UUID) ([]models.RoleHistory, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, from_role, to_role, changed_by, note, changed_at
		FROM role_history
		WHERE user_id = $1
		ORDER BY changed_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list role history: %w", err)
	}
	defer rows.Close()

	var entries []models.RoleHistory
	for rows.Next() {
		var h models.RoleHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.FromRole, &h.ToRole, &h.ChangedBy, &h.Note, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan role history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// RoleAt reconstructs the role a user held at the given instant from the
// role-change ledger. The last change at or before the instant wins; with
// no change at or before it, the role is whatever the user was created
// with, recovered from the from_role of the earliest later change, or the
// current role when no history exists at all.
func (s *UserStore) RoleAt(userID uuid.UUID, at time.Time) (models.Role, error) {
	user, err := s.FindByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("role at: user %s: %w", userID, ErrNotFound)
	}

	history, err := s.History(userID)
	if err != nil {
		return "", err
	}

	role := user.Role
	if len(history) > 0 {
		// Creation role: what the first recorded change moved away from.
		role = history[0].FromRole
	}
	for _, h := range history {
		if h.ChangedAt.After(at) {
			break
		}
		role = h.ToRole
	}
	return role, nil
}

// SetStatus suspends or reinstates a user. The actor must be active and
// strictly senior to the target; admins cannot be suspended by anyone.
func (s *UserStore) SetStatus(actor *models.User, targetID uuid.UUID, status models.UserStatus) error {
	if !actor.IsActive() {
		return fmt.Errorf("set status: actor is %s: %w", actor.Status, ErrUnauthorized)
	}
	target, err := s.FindByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("set status: target %s: %w", targetID, ErrNotFound)
	}
	if !policy.IsSenior(actor.Role, target.Role) {
		return fmt.Errorf("set status: %s over %s: %w", actor.Role, target.Role, ErrUnauthorized)
	}

	res, err := s.db.Exec(`
		UPDATE users SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`, status, target.ID, target.Version)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set status on %s: %w", target.ID, ErrConflict)
	}
	return nil
}

// Delete removes a user that owns no content. Users with posts or comments
// are never deleted; suspend them instead. The actor must be active and
// strictly senior to the target, the same gate SetStatus applies.
func (s *UserStore) Delete(actor *models.User, userID uuid.UUID) error {
	if !actor.IsActive() {
		return fmt.Errorf("delete user: actor is %s: %w", actor.Status, ErrUnauthorized)
	}
	target, err := s.FindByID(userID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("delete user: target %s: %w", userID, ErrNotFound)
	}
	if !policy.IsSenior(actor.Role, target.Role) {
		return fmt.Errorf("delete user: %s over %s: %w", actor.Role, target.Role, ErrUnauthorized)
	}

	var owned int
	err = s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM posts WHERE author_id = $1)
		     + (SELECT COUNT(*) FROM comments WHERE author_id = $1)
	`, userID).Scan(&owned)
	if err != nil {
		return fmt.Errorf("count owned content: %w", err)
	}
	if owned > 0 {
		return fmt.Errorf("delete user %s owns %d items: %w", userID, owned, ErrNotEmpty)
	}

	_, err = s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
