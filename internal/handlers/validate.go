// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxNameLen        = 200
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxBodyLen        = 100_000
	maxCommentLen     = 10_000
	maxDisplayNameLen = 200
	minPasswordLen    = 8
)

// validateName checks a category or tag name and returns the first error found.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validatePost checks post inputs and returns the first error found.
func validatePost(title, slug, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateComment checks a comment body.
func validateComment(body string) string {
	if strings.TrimSpace(body) == "" {
		return "Comment body is required."
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "Comment is too long (max 10,000 characters)."
	}
	return ""
}

// validateEmail performs a shallow shape check. Deliverability is the
// mailer's problem.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "Email address is not valid."
	}
	return ""
}

// validateRegistration checks the fields supplied when accepting an
// invitation.
func validateRegistration(displayName, password string) string {
	if strings.TrimSpace(displayName) == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}
