// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleAuthor    Role = "author"
	RoleModerator Role = "moderator"
)

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor, RoleModerator:
		return true
	}
	return false
}

// UserStatus represents a user's account state. Accounts are never deleted
// while they own content; deactivation is a status change.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusInvited   UserStatus = "invited"
)

// User represents a CMS user with authentication and 2FA fields.
// Role is only mutable through UserStore.ChangeRole, which appends a
// RoleHistory record in the same transaction.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	DisplayName  string     `json:"display_name"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	TOTPSecret   *string    `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool       `json:"totp_enabled"`
	Version      int        `json:"-"` // Optimistic concurrency token
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if the account may act on the system.
// Suspended and invited accounts fail every mutating operation.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
// All users must set up 2FA on their first login.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
