// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify publishes domain events to an AMQP broker so side
// channels (mailers, webhooks, search indexers) can react without being
// wired into the request path. Publishing is best-effort: failures are
// logged and swallowed, the triggering operation has already committed.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event queue names. Each event type gets its own durable queue.
const (
	QueueInvitationCreated = "invitation.created"
	QueueRoleChanged       = "role.changed"
	QueuePostPublished     = "post.published"
)

// InvitationCreatedEvent announces a fresh invitation so a mailer can
// deliver the accept link.
type InvitationCreatedEvent struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	Email        string    `json:"email"`
	TargetRole   string    `json:"target_role"`
	InvitedBy    uuid.UUID `json:"invited_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleChangedEvent mirrors a role history entry for external consumers.
type RoleChangedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	FromRole  string    `json:"from_role"`
	ToRole    string    `json:"to_role"`
	ChangedBy uuid.UUID `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// PostPublishedEvent fires when a post first reaches the published state.
type PostPublishedEvent struct {
	PostID      uuid.UUID `json:"post_id"`
	Slug        string    `json:"slug"`
	AuthorID    uuid.UUID `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

// Notifier delivers domain events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Publish(ctx context.Context, queue string, event any) error
}

// Nop is a Notifier that discards everything. Used when no broker is
// configured.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(ctx context.Context, queue string, event any) error {
	return nil
}
