package types

import (
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPendingSignature    SubscriptionStatus = "pending_signature"
	SubscriptionStatusPendingPayment      SubscriptionStatus = "pending_payment"
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusFrozen              SubscriptionStatus = "frozen"
	SubscriptionStatusPaused              SubscriptionStatus = "paused"
	SubscriptionStatusPastDue             SubscriptionStatus = "past_due"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
	SubscriptionStatusCancelled           SubscriptionStatus = "cancelled"
	SubscriptionStatusSuspended           SubscriptionStatus = "suspended"
	SubscriptionStatusExpired             SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPendingSignature,
		SubscriptionStatusPendingPayment,
		SubscriptionStatusActive,
		SubscriptionStatusFrozen,
		SubscriptionStatusPaused,
		SubscriptionStatusPastDue,
		SubscriptionStatusPendingCancellation,
		SubscriptionStatusCancelled,
		SubscriptionStatusSuspended,
		SubscriptionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanCancel reports whether a cancellation request may be opened from this status
func (s SubscriptionStatus) CanCancel() bool {
	return lo.Contains([]SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusFrozen,
		SubscriptionStatusPastDue,
		SubscriptionStatusPaused,
	}, s)
}

// AllowsAccess reports whether the member may enter the club in this status
func (s SubscriptionStatus) AllowsAccess() bool {
	return lo.Contains([]SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusPendingCancellation,
		SubscriptionStatusPastDue,
	}, s)
}

// IsTerminal reports whether the subscription has reached an end state
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}
