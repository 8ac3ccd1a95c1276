// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"lumina/internal/models"
)

func TestInvitationFlow(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	invitations := NewInvitationStore(db)

	adminEmail := "test-invite-admin@store-test.local"
	inviteeEmail := "test-invite-new@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, inviteeEmail) })

	admin := mustUser(t, users, adminEmail, models.RoleAdmin)

	invitation, err := invitations.Invite(admin, inviteeEmail, models.RoleAuthor)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if invitation.Status != models.InvitationStatusPending {
		t.Errorf("status: got %q, want pending", invitation.Status)
	}
	if invitation.TargetRole != models.RoleAuthor {
		t.Errorf("target role: got %q, want author", invitation.TargetRole)
	}

	// A second invitation for the same address while one is live.
	_, err = invitations.Invite(admin, inviteeEmail, models.RoleEditor)
	if !errors.Is(err, ErrAlreadyInvited) {
		t.Fatalf("duplicate invite: expected ErrAlreadyInvited, got %v", err)
	}

	user, err := invitations.Accept(invitation.ID, "New Author", "newpass123")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if user.Email != inviteeEmail {
		t.Errorf("email: got %q, want %q", user.Email, inviteeEmail)
	}
	if user.Role != models.RoleAuthor {
		t.Errorf("role: got %q, want author", user.Role)
	}
	if user.Status != models.UserStatusActive {
		t.Errorf("status: got %q, want active", user.Status)
	}

	// The second accept finds the invitation consumed.
	_, err = invitations.Accept(invitation.ID, "Impostor", "otherpass")
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("second accept: expected ErrNotPending, got %v", err)
	}

	// Exactly one user came out of the invitation.
	found, err := users.FindByEmail(inviteeEmail)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Error("expected exactly the accepted user to exist")
	}
}

func TestInvitationSeniority(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	invitations := NewInvitationStore(db)

	editorEmail := "test-invite-editor@store-test.local"
	inviteeEmail := "test-invite-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, editorEmail, inviteeEmail) })

	editor := mustUser(t, users, editorEmail, models.RoleEditor)

	// Editors can bring in authors but not moderators or peers.
	if _, err := invitations.Invite(editor, inviteeEmail, models.RoleModerator); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("editor inviting moderator: expected ErrUnauthorized, got %v", err)
	}
	if _, err := invitations.Invite(editor, inviteeEmail, models.RoleEditor); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("editor inviting editor: expected ErrUnauthorized, got %v", err)
	}
	if _, err := invitations.Invite(editor, inviteeEmail, models.RoleAuthor); err != nil {
		t.Fatalf("editor inviting author: %v", err)
	}
}

func TestInvitationRevoke(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	invitations := NewInvitationStore(db)

	adminEmail := "test-revoke-admin@store-test.local"
	inviteeEmail := "test-revoke-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, inviteeEmail) })

	admin := mustUser(t, users, adminEmail, models.RoleAdmin)

	invitation, err := invitations.Invite(admin, inviteeEmail, models.RoleAuthor)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := invitations.Revoke(admin, invitation.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// A revoked invitation cannot be accepted or revoked again.
	if _, err := invitations.Accept(invitation.ID, "Late", "pass12345"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("accept after revoke: expected ErrNotPending, got %v", err)
	}
	if err := invitations.Revoke(admin, invitation.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("double revoke: expected ErrNotPending, got %v", err)
	}

	// The address is free for a fresh invitation once the old one is dead.
	if _, err := invitations.Invite(admin, inviteeEmail, models.RoleAuthor); err != nil {
		t.Fatalf("re-invite after revoke: %v", err)
	}
}

// TestInvitationRevokeSeniority verifies that withdrawing an invitation
// takes the inviter or someone senior enough to have granted the role,
// the same gate Invite applies.
func TestInvitationRevokeSeniority(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	invitations := NewInvitationStore(db)

	adminEmail := "test-revoke-sen-admin@store-test.local"
	editorEmail := "test-revoke-sen-editor@store-test.local"
	authorEmail := "test-revoke-sen-author@store-test.local"
	inviteeEmail := "test-revoke-sen-target@store-test.local"
	t.Cleanup(func() {
		cleanUsers(t, db, adminEmail, editorEmail, authorEmail, inviteeEmail)
	})

	admin := mustUser(t, users, adminEmail, models.RoleAdmin)
	editor := mustUser(t, users, editorEmail, models.RoleEditor)
	author := mustUser(t, users, authorEmail, models.RoleAuthor)

	invitation, err := invitations.Invite(admin, inviteeEmail, models.RoleEditor)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	// Neither an author nor an editor may withdraw an admin's invitation
	// for an editor role.
	if err := invitations.Revoke(author, invitation.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("author revoking editor invite: expected ErrUnauthorized, got %v", err)
	}
	if err := invitations.Revoke(editor, invitation.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("editor revoking editor invite: expected ErrUnauthorized, got %v", err)
	}

	// The failed calls must leave the invitation pending.
	still, err := invitations.FindByID(invitation.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if still == nil || !still.IsPending() {
		t.Fatal("invitation should still be pending after unauthorized revokes")
	}

	if err := invitations.Revoke(admin, invitation.ID); err != nil {
		t.Fatalf("admin revoking own invite: %v", err)
	}

	// An editor may withdraw their own author invitation: the inviter
	// always has standing over what they issued.
	ownInvite, err := invitations.Invite(editor, inviteeEmail, models.RoleAuthor)
	if err != nil {
		t.Fatalf("editor invite: %v", err)
	}
	if err := invitations.Revoke(editor, ownInvite.ID); err != nil {
		t.Fatalf("editor revoking own invite: %v", err)
	}
}
