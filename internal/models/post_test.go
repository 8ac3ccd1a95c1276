package models

import "testing"

// TestPostStatusValid verifies that only the three lifecycle states validate.
func TestPostStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status PostStatus
		want   bool
	}{
		{name: "draft", status: PostStatusDraft, want: true},
		{name: "published", status: PostStatusPublished, want: true},
		{name: "archived", status: PostStatusArchived, want: true},
		{name: "empty status", status: PostStatus(""), want: false},
		{name: "unknown status", status: PostStatus("trashed"), want: false},
		{name: "uppercase DRAFT", status: PostStatus("DRAFT"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.status.Valid()
			if got != tt.want {
				t.Errorf("PostStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

// TestPostIsPublished verifies that IsPublished returns true only for
// the "published" status.
func TestPostIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status PostStatus
		want   bool
	}{
		{name: "published", status: PostStatusPublished, want: true},
		{name: "draft", status: PostStatusDraft, want: false},
		{name: "archived", status: PostStatusArchived, want: false},
		{name: "empty status", status: PostStatus(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{Status: tt.status}
			got := p.IsPublished()
			if got != tt.want {
				t.Errorf("Post{Status: %q}.IsPublished() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}
