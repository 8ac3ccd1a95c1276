package models

import "testing"

// TestCommentStatusTerminal verifies that approved and rejected accept no
// further transitions while pending does.
func TestCommentStatusTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status CommentStatus
		want   bool
	}{
		{name: "pending", status: CommentStatusPending, want: false},
		{name: "approved", status: CommentStatusApproved, want: true},
		{name: "rejected", status: CommentStatusRejected, want: true},
		{name: "empty status", status: CommentStatus(""), want: false},
		{name: "unknown status", status: CommentStatus("spam"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.status.Terminal()
			if got != tt.want {
				t.Errorf("CommentStatus(%q).Terminal() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}
