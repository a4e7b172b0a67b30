package services

import "testing"

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{"pending to processing", PaymentStatusPending, PaymentStatusProcessing, true},
		{"pending to completed", PaymentStatusPending, PaymentStatusCompleted, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"processing to completed", PaymentStatusProcessing, PaymentStatusCompleted, true},
		{"processing to failed", PaymentStatusProcessing, PaymentStatusFailed, true},
		{"processing to pending", PaymentStatusProcessing, PaymentStatusPending, false},
		{"completed to pending", PaymentStatusCompleted, PaymentStatusPending, false},
		{"completed to processing", PaymentStatusCompleted, PaymentStatusProcessing, false},
		{"completed to failed", PaymentStatusCompleted, PaymentStatusFailed, false},
		{"failed to completed", PaymentStatusFailed, PaymentStatusCompleted, false},
		{"same status replay", PaymentStatusCompleted, PaymentStatusCompleted, true},
		{"pending replay", PaymentStatusPending, PaymentStatusPending, true},
		{"unknown source", PaymentStatus("bogus"), PaymentStatusCompleted, false},
		{"unknown target", PaymentStatusPending, PaymentStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPaymentStatus_Terminal(t *testing.T) {
	terminal := []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing} {
		if s.Terminal() {
			t.Errorf("expected %s to not be terminal", s)
		}
	}
}

func TestMapPayTabsStatus(t *testing.T) {
	tests := []struct {
		name       string
		respStatus string
		respCode   string
		want       PaymentStatus
	}{
		{"authorized", "A", "100", PaymentStatusCompleted},
		{"authorized wrong code", "A", "481", PaymentStatusFailed},
		{"pending", "P", "", PaymentStatusProcessing},
		{"pending with code", "P", "200", PaymentStatusProcessing},
		{"declined", "D", "321", PaymentStatusFailed},
		{"error", "E", "", PaymentStatusFailed},
		{"empty", "", "", PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapPayTabsStatus(tt.respStatus, tt.respCode); got != tt.want {
				t.Errorf("MapPayTabsStatus(%q, %q) = %s, want %s", tt.respStatus, tt.respCode, got, tt.want)
			}
		})
	}
}
