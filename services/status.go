package services

// PaymentStatus is the internal lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	// Refunded exists in the schema but no code path produces it yet.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// rank orders states by finality: pending < processing < terminal states.
// Updates may only move a payment forward in this ordering, which keeps
// replayed or out-of-order gateway callbacks from regressing a payment
// that already reached a terminal state.
func (s PaymentStatus) rank() int {
	switch s {
	case PaymentStatusPending:
		return 0
	case PaymentStatusProcessing:
		return 1
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return 2
	default:
		return -1
	}
}

func (s PaymentStatus) Valid() bool {
	return s.rank() >= 0
}

func (s PaymentStatus) Terminal() bool {
	return s.rank() == 2
}

// CanTransitionTo reports whether moving from s to next is legal.
// Rewriting the same status is allowed so duplicate callbacks stay harmless.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return next.rank() > s.rank()
}

// MapPayTabsStatus maps a PayTabs callback result to an internal status.
// Anything other than the two recognized combinations counts as failed,
// matching how the gateway reports declines and unknown result codes.
func MapPayTabsStatus(respStatus, respCode string) PaymentStatus {
	switch {
	case respStatus == "A" && respCode == "100":
		return PaymentStatusCompleted
	case respStatus == "P":
		return PaymentStatusProcessing
	default:
		return PaymentStatusFailed
	}
}
