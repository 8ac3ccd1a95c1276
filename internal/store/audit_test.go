// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"lumina/internal/models"
)

func TestAuditRecordAndQuery(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	audit := NewAuditStore(db)

	email := "test-audit@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user := mustUser(t, users, email, models.RoleAuthor)

	// A failed attempt, then a success.
	fail := &models.LoginAttempt{
		UserID: &user.ID, Email: email, Provider: "password",
		IP: "203.0.113.7", UserAgent: "test-agent", Success: false,
	}
	if err := audit.RecordLogin(fail); err != nil {
		t.Fatalf("RecordLogin (fail): %v", err)
	}
	ok := &models.LoginAttempt{
		UserID: &user.ID, Email: email, Provider: "password",
		IP: "203.0.113.7", UserAgent: "test-agent", Success: true,
	}
	if err := audit.RecordLogin(ok); err != nil {
		t.Fatalf("RecordLogin (success): %v", err)
	}

	attempts, err := audit.ListByUser(user.ID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts: got %d, want 2", len(attempts))
	}
	// Newest first.
	if !attempts[0].Success || attempts[1].Success {
		t.Error("expected the success to sort before the failure")
	}

	failures, err := audit.RecentFailures(email, time.Hour)
	if err != nil {
		t.Fatalf("RecentFailures: %v", err)
	}
	if failures != 1 {
		t.Errorf("recent failures: got %d, want 1", failures)
	}

	ranged, err := audit.ListRange(time.Now().Add(-time.Hour), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	var mine int
	for _, a := range ranged {
		if a.Email == email {
			mine++
		}
	}
	if mine != 2 {
		t.Errorf("ranged attempts for user: got %d, want 2", mine)
	}
}

func TestAuditUnknownAccount(t *testing.T) {
	db := testDB(t)
	audit := NewAuditStore(db)

	email := "test-audit-unknown@store-test.local"
	t.Cleanup(func() {
		db.Exec("DELETE FROM login_attempts WHERE email = $1", email)
	})

	// Attempts against unknown accounts carry no user id but are still
	// recorded.
	attempt := &models.LoginAttempt{
		Email: email, Provider: "password", Success: false,
	}
	if err := audit.RecordLogin(attempt); err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if attempt.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected an assigned id")
	}

	failures, err := audit.RecentFailures(email, time.Hour)
	if err != nil {
		t.Fatalf("RecentFailures: %v", err)
	}
	if failures != 1 {
		t.Errorf("recent failures: got %d, want 1", failures)
	}
}
