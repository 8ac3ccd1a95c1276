// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin plus a small taxonomy and a sample published post so the API has
// something to serve. The admin will be prompted to set up 2FA on first
// login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Default admin. 2FA is not enabled, they must set it up on first login.
	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@lumina.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var generalID string
	err = db.QueryRow(`
		INSERT INTO categories (name, slug, description, depth, sort_order)
		VALUES ('General', 'general', 'Uncategorized writing', 0, 1)
		RETURNING id
	`).Scan(&generalID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO categories (name, slug, description, parent_id, depth, sort_order)
		VALUES ('Announcements', 'announcements', 'Site news', $1, 1, 1)
	`, generalID)
	if err != nil {
		return fmt.Errorf("seed insert subcategory: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO posts (title, slug, body, status, author_id, category_id, published_at)
		VALUES ('Welcome', 'welcome', 'The site is live.', 'published', $1, $2, NOW())
	`, adminID, generalID)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@lumina.local",
		"password", "admin",
	)

	return nil
}
