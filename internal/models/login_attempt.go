// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is one append-only audit record of an authentication
// attempt. UserID is nil when the presented email matched no account.
// Rows are written once and never updated or deleted; retention is a
// storage concern, not handled here.
type LoginAttempt struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Email     string     `json:"email"`
	Provider  string     `json:"provider"` // "password", "totp"
	IP        string     `json:"ip"`
	UserAgent string     `json:"user_agent"`
	Success   bool       `json:"success"`
	CreatedAt time.Time  `json:"created_at"`
}
