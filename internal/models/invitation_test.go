package models

import "testing"

// TestInvitationIsPending verifies that only pending invitations can still
// be accepted or revoked.
func TestInvitationIsPending(t *testing.T) {
	tests := []struct {
		name   string
		status InvitationStatus
		want   bool
	}{
		{name: "pending", status: InvitationStatusPending, want: true},
		{name: "accepted", status: InvitationStatusAccepted, want: false},
		{name: "revoked", status: InvitationStatusRevoked, want: false},
		{name: "empty status", status: InvitationStatus(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Invitation{Status: tt.status}
			got := i.IsPending()
			if got != tt.want {
				t.Errorf("Invitation{Status: %q}.IsPending() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}
