// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lumina/internal/models"
	"lumina/internal/policy"
)

const invitationColumns = `id, email, target_role, invited_by, status, created_at, updated_at`

// InvitationStore manages the invitation flow: pending invitations bound
// to a target role, consumed exactly once to create a new identity.
type InvitationStore struct {
	db *sql.DB
}

// NewInvitationStore returns a new InvitationStore.
func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

// scanInvitation scans an invitations row into an Invitation struct.
func scanInvitation(scanner interface{ Scan(...any) error }) (*models.Invitation, error) {
	var i models.Invitation
	err := scanner.Scan(
		&i.ID, &i.Email, &i.TargetRole, &i.InvitedBy, &i.Status,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// FindByID retrieves an invitation by ID. Returns nil if not found.
func (s *InvitationStore) FindByID(id uuid.UUID) (*models.Invitation, error) {
	row := s.db.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	i, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation by id: %w", err)
	}
	return i, nil
}

// List returns all invitations, newest first.
func (s *InvitationStore) List() ([]models.Invitation, error) {
	rows, err := s.db.Query(`SELECT ` + invitationColumns + ` FROM invitations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var items []models.Invitation
	for rows.Next() {
		i, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// Invite creates a pending invitation for email with the given target
// role. The actor must be active and senior enough to grant the role
// (same seniority rule as role changes); a second pending invitation for
// the same email fails with ErrAlreadyInvited.
func (s *InvitationStore) Invite(actor *models.User, email string, role models.Role) (*models.Invitation, error) {
	if !actor.IsActive() {
		return nil, fmt.Errorf("invite: actor is %s: %w", actor.Status, ErrUnauthorized)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invite: unknown role %q: %w", role, ErrForbidden)
	}
	if !policy.CanGrant(actor.Role, role) {
		return nil, fmt.Errorf("invite: %s may not grant %s: %w", actor.Role, role, ErrUnauthorized)
	}

	var pending bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM invitations WHERE email = $1 AND status = 'pending')
	`, email).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("invite %s: %w", email, ErrAlreadyInvited)
	}

	row := s.db.QueryRow(`
		INSERT INTO invitations (email, target_role, invited_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+invitationColumns,
		email, role, actor.ID, models.InvitationStatusPending,
	)
	i, err := scanInvitation(row)
	if err != nil {
		// The partial unique index on pending emails backs up the pre-check
		// when two invite calls race.
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("invite %s: %w", email, ErrAlreadyInvited)
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return i, nil
}

// Accept consumes a pending invitation, creating an active user with the
// invitation's target role. Consumption is exactly-once: the status flip
// is guarded on pending, and the user insert shares its transaction, so a
// second Accept fails with ErrNotPending and never creates a duplicate.
func (s *InvitationStore) Accept(id uuid.UUID, displayName, password string) (*models.User, error) {
	invitation, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, fmt.Errorf("accept invitation %s: %w", id, ErrNotFound)
	}
	if !invitation.IsPending() {
		return nil, fmt.Errorf("accept invitation in %s: %w", invitation.Status, ErrNotPending)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.InvitationStatusAccepted, invitation.ID, models.InvitationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("consume invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("consume invitation: %w", err)
	}
	if affected == 0 {
		// Lost the race with another accept or a revoke.
		return nil, fmt.Errorf("accept invitation %s: %w", invitation.ID, ErrNotPending)
	}

	row := tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		invitation.Email, string(hash), displayName, invitation.TargetRole, models.UserStatusActive,
	)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("accept invitation for %s: %w", invitation.Email, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("create invited user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept: %w", err)
	}
	return user, nil
}

// Revoke withdraws a pending invitation. Only the pending state can be
// revoked; anything else fails with ErrNotPending. The actor must be the
// inviter or senior enough to have granted the invited role, the same
// gate Invite applies.
func (s *InvitationStore) Revoke(actor *models.User, id uuid.UUID) error {
	if !actor.IsActive() {
		return fmt.Errorf("revoke invitation: actor is %s: %w", actor.Status, ErrUnauthorized)
	}

	invitation, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if invitation == nil {
		return fmt.Errorf("revoke invitation %s: %w", id, ErrNotFound)
	}
	if actor.ID != invitation.InvitedBy && !policy.CanGrant(actor.Role, invitation.TargetRole) {
		return fmt.Errorf("revoke invitation: %s cannot withdraw a %s invitation: %w",
			actor.Role, invitation.TargetRole, ErrUnauthorized)
	}

	res, err := s.db.Exec(`
		UPDATE invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.InvitationStatusRevoked, id, models.InvitationStatusPending)
	if err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}
	if affected == 0 {
		existing, err := s.FindByID(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("revoke invitation %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("revoke invitation in %s: %w", existing.Status, ErrNotPending)
	}
	return nil
}
