// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Invitation is a pending offer to create an account with a preassigned
// role. At most one pending invitation exists per email; accepting it is
// the only path by which a new user's initial role may differ from the
// system default, and it can happen exactly once.
type Invitation struct {
	ID         uuid.UUID        `json:"id"`
	Email      string           `json:"email"`
	TargetRole Role             `json:"target_role"`
	InvitedBy  uuid.UUID        `json:"invited_by"`
	Status     InvitationStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// IsPending returns true if the invitation can still be accepted or revoked.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}
