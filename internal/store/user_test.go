// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lumina/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(email, "testpass123", "Test User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.Role != models.RoleEditor {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleEditor)
	}
	if user.Status != models.UserStatusActive {
		t.Errorf("status: got %q, want active", user.Status)
	}
	if user.PasswordHash == "" || user.PasswordHash == "testpass123" {
		t.Error("password hash must be set and not plaintext")
	}
	if !s.CheckPassword(user, "testpass123") {
		t.Error("CheckPassword should accept the original password")
	}
	if s.CheckPassword(user, "wrong") {
		t.Error("CheckPassword should reject a wrong password")
	}

	// A second account on the same address names the email, not a slug.
	_, err = s.Create(email, "otherpass123", "Someone Else", models.RoleAuthor)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate email: expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserStoreFindByEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-findbyemail@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	// Not found case.
	user, err := s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created := mustUser(t, s, email, models.RoleAuthor)

	user, err = s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", user.ID, created.ID)
	}
}

func TestChangeRole(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	adminEmail := "test-changerole-admin@store-test.local"
	targetEmail := "test-changerole-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, targetEmail) })

	admin := mustUser(t, s, adminEmail, models.RoleAdmin)
	target := mustUser(t, s, targetEmail, models.RoleAuthor)

	entry, err := s.ChangeRole(admin, target.ID, models.RoleEditor, "promotion")
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if entry.FromRole != models.RoleAuthor || entry.ToRole != models.RoleEditor {
		t.Errorf("history entry: got %s->%s, want author->editor", entry.FromRole, entry.ToRole)
	}
	if entry.ChangedBy != admin.ID {
		t.Errorf("changed_by: got %s, want %s", entry.ChangedBy, admin.ID)
	}
	if entry.Note != "promotion" {
		t.Errorf("note: got %q", entry.Note)
	}

	updated, err := s.FindByID(target.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if updated.Role != models.RoleEditor {
		t.Errorf("role after change: got %q, want editor", updated.Role)
	}
	if updated.Version <= target.Version {
		t.Errorf("version should bump: got %d, had %d", updated.Version, target.Version)
	}
}

func TestChangeRoleDeniedLeavesNoTrace(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	editorEmail := "test-changerole-editor@store-test.local"
	peerEmail := "test-changerole-peer@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, editorEmail, peerEmail) })

	editor := mustUser(t, s, editorEmail, models.RoleEditor)
	peer := mustUser(t, s, peerEmail, models.RoleEditor)

	// An editor is not senior to another editor.
	_, err := s.ChangeRole(editor, peer.ID, models.RoleAuthor, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// The denied call must not touch the role or the ledger.
	after, err := s.FindByID(peer.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if after.Role != models.RoleEditor {
		t.Errorf("role changed by denied call: got %q", after.Role)
	}
	history, err := s.History(peer.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}
}

func TestChangeRoleModeratorNeedsAdmin(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	editorEmail := "test-modswap-editor@store-test.local"
	adminEmail := "test-modswap-admin@store-test.local"
	authorEmail := "test-modswap-author@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, editorEmail, adminEmail, authorEmail) })

	editor := mustUser(t, s, editorEmail, models.RoleEditor)
	admin := mustUser(t, s, adminEmail, models.RoleAdmin)
	author := mustUser(t, s, authorEmail, models.RoleAuthor)

	// Editors are not senior to moderator, so they cannot move anyone
	// into that role.
	_, err := s.ChangeRole(editor, author.ID, models.RoleModerator, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("editor granting moderator: expected ErrUnauthorized, got %v", err)
	}

	if _, err := s.ChangeRole(admin, author.ID, models.RoleModerator, ""); err != nil {
		t.Fatalf("admin granting moderator: %v", err)
	}
}

func TestChangeRoleNoChange(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	adminEmail := "test-nochange-admin@store-test.local"
	targetEmail := "test-nochange-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, targetEmail) })

	admin := mustUser(t, s, adminEmail, models.RoleAdmin)
	target := mustUser(t, s, targetEmail, models.RoleAuthor)

	_, err := s.ChangeRole(admin, target.ID, models.RoleAuthor, "")
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}

	history, err := s.History(target.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("no-op change must not append history, got %d entries", len(history))
	}
}

func TestChangeRoleSuspendedActor(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	adminEmail := "test-suspact-admin@store-test.local"
	rootEmail := "test-suspact-root@store-test.local"
	targetEmail := "test-suspact-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, rootEmail, targetEmail) })

	admin := mustUser(t, s, adminEmail, models.RoleAdmin)
	root := mustUser(t, s, rootEmail, models.RoleAdmin)
	target := mustUser(t, s, targetEmail, models.RoleAuthor)

	if err := s.SetStatus(root, admin.ID, models.UserStatusSuspended); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	suspended, err := s.FindByID(admin.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	_, err = s.ChangeRole(suspended, target.ID, models.RoleEditor, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("suspended actor: expected ErrUnauthorized, got %v", err)
	}
}

func TestRoleAt(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	adminEmail := "test-roleat-admin@store-test.local"
	targetEmail := "test-roleat-target@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, adminEmail, targetEmail) })

	admin := mustUser(t, s, adminEmail, models.RoleAdmin)
	target := mustUser(t, s, targetEmail, models.RoleAuthor)

	entry, err := s.ChangeRole(admin, target.ID, models.RoleEditor, "")
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	// Just before the change the user was still an author.
	role, err := s.RoleAt(target.ID, entry.ChangedAt.Add(-time.Millisecond))
	if err != nil {
		t.Fatalf("RoleAt (before): %v", err)
	}
	if role != models.RoleAuthor {
		t.Errorf("role before change: got %q, want author", role)
	}

	// At and after the change, editor.
	role, err = s.RoleAt(target.ID, entry.ChangedAt)
	if err != nil {
		t.Fatalf("RoleAt (at): %v", err)
	}
	if role != models.RoleEditor {
		t.Errorf("role at change: got %q, want editor", role)
	}

	// A user with no history reports their current role at any time.
	role, err = s.RoleAt(admin.ID, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("RoleAt (no history): %v", err)
	}
	if role != models.RoleAdmin {
		t.Errorf("role with no history: got %q, want admin", role)
	}
}

func TestSetStatusSeniority(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	editorEmail := "test-status-editor@store-test.local"
	peerEmail := "test-status-peer@store-test.local"
	authorEmail := "test-status-author@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, editorEmail, peerEmail, authorEmail) })

	editor := mustUser(t, s, editorEmail, models.RoleEditor)
	peer := mustUser(t, s, peerEmail, models.RoleEditor)
	author := mustUser(t, s, authorEmail, models.RoleAuthor)

	if err := s.SetStatus(editor, peer.ID, models.UserStatusSuspended); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("suspending a peer: expected ErrUnauthorized, got %v", err)
	}

	if err := s.SetStatus(editor, author.ID, models.UserStatusSuspended); err != nil {
		t.Fatalf("suspending a junior: %v", err)
	}
	got, err := s.FindByID(author.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.UserStatusSuspended {
		t.Errorf("status: got %q, want suspended", got.Status)
	}

	if err := s.SetStatus(editor, author.ID, models.UserStatusActive); err != nil {
		t.Fatalf("reinstating: %v", err)
	}
}

func TestUserDeleteWithContent(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	posts := NewPostStore(db)

	email := "test-delete-author@store-test.local"
	adminEmail := "test-delete-admin@store-test.local"
	slug := "test-delete-post"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanUsers(t, db, email, adminEmail)
	})

	admin := mustUser(t, users, adminEmail, models.RoleAdmin)
	author := mustUser(t, users, email, models.RoleAuthor)

	if _, err := posts.Create(author, &models.Post{
		Title: "Delete Guard", Slug: slug, Body: "body",
	}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := users.Delete(admin, author.ID); !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("expected ErrNotEmpty, got %v", err)
	}

	// After the content is gone the delete goes through.
	cleanPosts(t, db, slug)
	if err := users.Delete(admin, author.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

// TestUserDeleteSeniority verifies that deletion is gated by the same
// strict-seniority rule as status changes: a peer cannot remove a peer,
// and juniors cannot remove their seniors.
func TestUserDeleteSeniority(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	authorEmail := "test-delete-sen-author@store-test.local"
	editorEmail := "test-delete-sen-editor@store-test.local"
	moderatorEmail := "test-delete-sen-moderator@store-test.local"
	t.Cleanup(func() {
		cleanUsers(t, db, authorEmail, editorEmail, moderatorEmail)
	})

	author := mustUser(t, users, authorEmail, models.RoleAuthor)
	editor := mustUser(t, users, editorEmail, models.RoleEditor)
	moderator := mustUser(t, users, moderatorEmail, models.RoleModerator)

	// Junior over senior.
	if err := users.Delete(author, editor.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("author deleting editor: expected ErrUnauthorized, got %v", err)
	}
	// Incomparable roles.
	if err := users.Delete(moderator, author.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("moderator deleting author: expected ErrUnauthorized, got %v", err)
	}

	// The failed calls must leave both targets in place.
	for _, id := range []struct {
		label string
		who   *models.User
	}{{"editor", editor}, {"author", author}} {
		got, err := users.FindByID(id.who.ID)
		if err != nil {
			t.Fatalf("find %s: %v", id.label, err)
		}
		if got == nil {
			t.Fatalf("%s was deleted by an unauthorized actor", id.label)
		}
	}

	// Editor is senior to author, so this one succeeds.
	if err := users.Delete(editor, author.ID); err != nil {
		t.Fatalf("editor deleting author: %v", err)
	}
}
