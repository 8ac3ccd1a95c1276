// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lumina/internal/models"
)

const loginAttemptColumns = `id, user_id, email, provider, ip, user_agent, success, created_at`

// AuditStore records login attempts. The table is append-only: attempts
// are written once and never updated or deleted.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore returns a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func scanLoginAttempt(scanner interface{ Scan(...any) error }) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	err := scanner.Scan(
		&a.ID, &a.UserID, &a.Email, &a.Provider, &a.IP,
		&a.UserAgent, &a.Success, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RecordLogin appends a login attempt. Failed attempts for unknown
// accounts carry a nil UserID and only the submitted email.
func (s *AuditStore) RecordLogin(a *models.LoginAttempt) error {
	row := s.db.QueryRow(`
		INSERT INTO login_attempts (user_id, email, provider, ip, user_agent, success)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.UserID, a.Email, a.Provider, a.IP, a.UserAgent, a.Success)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// ListByUser returns a user's login attempts, newest first.
func (s *AuditStore) ListByUser(userID uuid.UUID, limit int) ([]models.LoginAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT `+loginAttemptColumns+` FROM login_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list login attempts by user: %w", err)
	}
	defer rows.Close()
	return collectLoginAttempts(rows)
}

// ListRange returns all login attempts inside [from, to), newest first.
func (s *AuditStore) ListRange(from, to time.Time) ([]models.LoginAttempt, error) {
	rows, err := s.db.Query(`
		SELECT `+loginAttemptColumns+` FROM login_attempts
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list login attempts by range: %w", err)
	}
	defer rows.Close()
	return collectLoginAttempts(rows)
}

// RecentFailures counts failed attempts for an email within the window,
// used to surface brute-force pressure on an account.
func (s *AuditStore) RecentFailures(email string, window time.Duration) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND success = FALSE AND created_at > NOW() - $2::interval
	`, email, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent failures: %w", err)
	}
	return count, nil
}

func collectLoginAttempts(rows *sql.Rows) ([]models.LoginAttempt, error) {
	var items []models.LoginAttempt
	for rows.Next() {
		a, err := scanLoginAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan login attempt: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
