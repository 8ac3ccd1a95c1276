// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleHistory is one immutable entry in the append-only role-change ledger.
// Rows are inserted in the same transaction as the role update on the user
// and are never modified afterwards; ordered by ChangedAt they reconstruct
// a user's role at any past instant.
type RoleHistory struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FromRole  Role      `json:"from_role"`
	ToRole    Role      `json:"to_role"`
	ChangedBy uuid.UUID `json:"changed_by"`
	Note      string    `json:"note"`
	ChangedAt time.Time `json:"changed_at"`
}
