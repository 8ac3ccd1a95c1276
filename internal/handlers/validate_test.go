// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Technology", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"at limit", strings.Repeat("a", 200), false},
		{"over limit", strings.Repeat("a", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateName(tt.input)
			if (got != "") != tt.wantErr {
				t.Errorf("validateName(%q) = %q, wantErr=%v", tt.input, got, tt.wantErr)
			}
		})
	}
}

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		slug    string
		body    string
		wantErr bool
	}{
		{"valid", "A Post", "a-post", "body", false},
		{"missing title", "", "a-post", "body", true},
		{"title too long", strings.Repeat("t", 301), "s", "b", true},
		{"slug too long", "Title", strings.Repeat("s", 301), "b", true},
		{"body too long", "Title", "s", strings.Repeat("b", 100_001), true},
		{"empty slug ok", "Title", "", "body", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validatePost(tt.title, tt.slug, tt.body)
			if (got != "") != tt.wantErr {
				t.Errorf("validatePost() = %q, wantErr=%v", got, tt.wantErr)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	if msg := validateComment("fine"); msg != "" {
		t.Errorf("valid comment rejected: %q", msg)
	}
	if msg := validateComment("  "); msg == "" {
		t.Error("blank comment accepted")
	}
	if msg := validateComment(strings.Repeat("c", 10_001)); msg == "" {
		t.Error("oversized comment accepted")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"user@example.com", false},
		{"u@e.co", false},
		{"", true},
		{"no-at-sign", true},
		{"@example.com", true},
		{"user@", true},
		{"user@nodot", true},
	}

	for _, tt := range tests {
		got := validateEmail(tt.input)
		if (got != "") != tt.wantErr {
			t.Errorf("validateEmail(%q) = %q, wantErr=%v", tt.input, got, tt.wantErr)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		password    string
		wantErr     bool
	}{
		{"valid", "New User", "longenough", false},
		{"missing name", "", "longenough", true},
		{"short password", "New User", "short", true},
		{"name too long", strings.Repeat("n", 201), "longenough", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateRegistration(tt.displayName, tt.password)
			if (got != "") != tt.wantErr {
				t.Errorf("validateRegistration() = %q, wantErr=%v", got, tt.wantErr)
			}
		})
	}
}
