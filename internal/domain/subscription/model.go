package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// Subscription is the member's live entitlement to the club. It tracks the
// billing period, freeze state, per-period usage counters, a pending
// cancellation, and at most one scheduled plan change.
type Subscription struct {
	ID       string `db:"id" json:"id"`
	MemberID string `db:"member_id" json:"member_id"`
	PlanID   string `db:"plan_id" json:"plan_id"`

	Status types.SubscriptionStatus `db:"status" json:"status"`

	StartDate          time.Time  `db:"start_date" json:"start_date"`
	CurrentPeriodStart time.Time  `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `db:"current_period_end" json:"current_period_end"`
	EndDate            *time.Time `db:"end_date" json:"end_date,omitempty"`

	RecurringAmount decimal.Decimal `db:"recurring_amount" json:"recurring_amount"`
	Currency        string          `db:"currency" json:"currency"`

	FrozenAt    *time.Time        `db:"frozen_at" json:"frozen_at,omitempty"`
	FrozenUntil *time.Time        `db:"frozen_until" json:"frozen_until,omitempty"`
	FreezeType  *types.FreezeType `db:"freeze_type" json:"freeze_type,omitempty"`

	CancellationRequestedAt   *time.Time `db:"cancellation_requested_at" json:"cancellation_requested_at,omitempty"`
	CancellationEffectiveDate *time.Time `db:"cancellation_effective_date" json:"cancellation_effective_date,omitempty"`
	CancelledAt               *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ReactivationDeadline      *time.Time `db:"reactivation_deadline" json:"reactivation_deadline,omitempty"`

	ScheduledPlanChangeID *string `db:"scheduled_plan_change_id" json:"scheduled_plan_change_id,omitempty"`

	ClassesUsed     int `db:"classes_used" json:"classes_used"`
	GuestPassesUsed int `db:"guest_passes_used" json:"guest_passes_used"`

	AutoRenew bool `db:"auto_renew" json:"auto_renew"`

	types.BaseModel
}

// PeriodDays returns the total calendar days in the current billing period.
func (s *Subscription) PeriodDays() int {
	return types.DaysBetween(s.CurrentPeriodStart, s.CurrentPeriodEnd)
}

// DaysRemainingInPeriod returns the calendar days left in the current billing
// period, zero once past the period end.
func (s *Subscription) DaysRemainingInPeriod(at time.Time) int {
	days := types.DaysBetween(at, s.CurrentPeriodEnd)
	if days < 0 {
		return 0
	}
	return days
}

func (s *Subscription) invalidState(msg string) error {
	return ierr.NewError(msg).
		WithReportableDetails(map[string]any{
			"subscription_id": s.ID,
			"status":          s.Status,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// Activate moves a newly created subscription to active once the contract is
// approved and the first payment confirmed.
func (s *Subscription) Activate() error {
	if s.Status != types.SubscriptionStatusPendingSignature &&
		s.Status != types.SubscriptionStatusPendingPayment {
		return s.invalidState("subscription cannot be activated")
	}
	s.Status = types.SubscriptionStatusActive
	return nil
}

// Freeze pauses an active subscription for the given number of days. The
// period end is pushed out by the full requested days so no paid time is lost.
// Returns the period end before and after the extension for the freeze ledger.
func (s *Subscription) Freeze(at time.Time, days int, freezeType types.FreezeType) (originalEnd, newEnd time.Time, err error) {
	if s.Status != types.SubscriptionStatusActive {
		return time.Time{}, time.Time{}, s.invalidState("only active subscriptions can be frozen")
	}
	if days <= 0 {
		return time.Time{}, time.Time{}, ierr.NewError("freeze days must be positive").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"days":            days,
			}).
			Mark(ierr.ErrValidation)
	}

	until := types.ToDate(at).AddDate(0, 0, days)
	originalEnd = s.CurrentPeriodEnd

	s.Status = types.SubscriptionStatusFrozen
	s.FrozenAt = &at
	s.FrozenUntil = &until
	s.FreezeType = &freezeType
	s.CurrentPeriodEnd = s.CurrentPeriodEnd.AddDate(0, 0, days)
	return originalEnd, s.CurrentPeriodEnd, nil
}

// Unfreeze resumes a frozen subscription. The extension granted at freeze
// time is permanent, even when resuming early.
func (s *Subscription) Unfreeze() error {
	if s.Status != types.SubscriptionStatusFrozen {
		return s.invalidState("subscription is not frozen")
	}

	s.Status = types.SubscriptionStatusActive
	s.FrozenAt = nil
	s.FrozenUntil = nil
	s.FreezeType = nil
	return nil
}

// RequestCancellation marks the subscription pending cancellation at the given
// effective date. Access continues until then.
func (s *Subscription) RequestCancellation(at time.Time, effectiveDate time.Time) error {
	if !s.Status.CanCancel() {
		return s.invalidState("subscription cannot be cancelled in its current state")
	}
	if s.CancellationRequestedAt != nil {
		return ierr.NewError("subscription already has a pending cancellation").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	effective := types.ToDate(effectiveDate)
	s.Status = types.SubscriptionStatusPendingCancellation
	s.CancellationRequestedAt = &at
	s.CancellationEffectiveDate = &effective
	return nil
}

// WithdrawCancellation clears a pending cancellation and restores access.
func (s *Subscription) WithdrawCancellation() error {
	if s.Status != types.SubscriptionStatusPendingCancellation {
		return s.invalidState("subscription has no cancellation to withdraw")
	}
	s.Status = types.SubscriptionStatusActive
	s.CancellationRequestedAt = nil
	s.CancellationEffectiveDate = nil
	return nil
}

// CompleteCancellation ends the subscription once the effective date is
// reached, opening the reactivation window.
func (s *Subscription) CompleteCancellation(at time.Time, reactivationWindowDays int) error {
	if s.Status != types.SubscriptionStatusPendingCancellation {
		return s.invalidState("subscription is not pending cancellation")
	}

	end := types.ToDate(at)
	deadline := end.AddDate(0, 0, reactivationWindowDays)
	s.Status = types.SubscriptionStatusCancelled
	s.CancelledAt = &at
	s.EndDate = &end
	s.ReactivationDeadline = &deadline
	return nil
}

// CancelImmediately ends the subscription at once, as in a cooling-off
// cancellation. No reactivation window is opened.
func (s *Subscription) CancelImmediately(at time.Time) error {
	if !s.Status.CanCancel() && s.Status != types.SubscriptionStatusPendingCancellation {
		return s.invalidState("subscription cannot be cancelled in its current state")
	}

	end := types.ToDate(at)
	s.Status = types.SubscriptionStatusCancelled
	s.CancelledAt = &at
	s.EndDate = &end
	return nil
}

// Reactivate restores a cancelled subscription inside its reactivation
// window, skipping a new join fee.
func (s *Subscription) Reactivate(at time.Time, periodEnd time.Time) error {
	if s.Status != types.SubscriptionStatusCancelled {
		return s.invalidState("only cancelled subscriptions can be reactivated")
	}
	if s.ReactivationDeadline == nil || types.ToDate(at).After(types.ToDate(*s.ReactivationDeadline)) {
		return ierr.NewError("reactivation window has closed").
			WithHint("A new subscription must be created with a new join fee").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrExpired)
	}

	s.Status = types.SubscriptionStatusActive
	s.CurrentPeriodStart = types.ToDate(at)
	s.CurrentPeriodEnd = types.ToDate(periodEnd)
	s.CancellationRequestedAt = nil
	s.CancellationEffectiveDate = nil
	s.CancelledAt = nil
	s.EndDate = nil
	s.ReactivationDeadline = nil
	s.ClassesUsed = 0
	s.GuestPassesUsed = 0
	return nil
}

// ChangePlan swaps the subscription to a new plan and recurring amount,
// effective immediately.
func (s *Subscription) ChangePlan(planID string, recurringAmount decimal.Decimal) error {
	if s.Status != types.SubscriptionStatusActive {
		return s.invalidState("only active subscriptions can change plan")
	}
	s.PlanID = planID
	s.RecurringAmount = recurringAmount
	return nil
}

// ScheduleChange records a pending plan change. A subscription carries at most
// one.
func (s *Subscription) ScheduleChange(changeID string) error {
	if s.Status != types.SubscriptionStatusActive {
		return s.invalidState("only active subscriptions can schedule a plan change")
	}
	if s.ScheduledPlanChangeID != nil {
		return ierr.NewError("subscription already has a scheduled plan change").
			WithHint("Cancel the existing scheduled change first").
			WithReportableDetails(map[string]any{
				"subscription_id":          s.ID,
				"scheduled_plan_change_id": *s.ScheduledPlanChangeID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	s.ScheduledPlanChangeID = &changeID
	return nil
}

// ClearScheduledChange drops the pointer to a processed or cancelled change.
func (s *Subscription) ClearScheduledChange() {
	s.ScheduledPlanChangeID = nil
}

// Renew rolls the subscription into its next billing period and resets the
// per-period usage counters.
func (s *Subscription) Renew(periodStart, periodEnd time.Time) error {
	if s.Status != types.SubscriptionStatusActive && s.Status != types.SubscriptionStatusPastDue {
		return s.invalidState("subscription cannot renew")
	}
	s.Status = types.SubscriptionStatusActive
	s.CurrentPeriodStart = types.ToDate(periodStart)
	s.CurrentPeriodEnd = types.ToDate(periodEnd)
	s.ClassesUsed = 0
	s.GuestPassesUsed = 0
	return nil
}

// MarkPastDue flags a missed renewal payment. Access is retained for the
// grace period.
func (s *Subscription) MarkPastDue() error {
	if s.Status != types.SubscriptionStatusActive {
		return s.invalidState("only active subscriptions can become past due")
	}
	s.Status = types.SubscriptionStatusPastDue
	return nil
}

// ConfirmPayment clears a past-due flag after a successful retry.
func (s *Subscription) ConfirmPayment() error {
	if s.Status != types.SubscriptionStatusPastDue &&
		s.Status != types.SubscriptionStatusPendingPayment {
		return s.invalidState("subscription has no pending payment")
	}
	s.Status = types.SubscriptionStatusActive
	return nil
}

// Suspend blocks access without ending the subscription.
func (s *Subscription) Suspend() error {
	if s.Status.IsTerminal() {
		return s.invalidState("subscription cannot be suspended")
	}
	s.Status = types.SubscriptionStatusSuspended
	return nil
}

// UseClass consumes one class booking from the current period's allowance.
// A nil allowance means unlimited.
func (s *Subscription) UseClass(allowed *int) error {
	if !s.Status.AllowsAccess() {
		return s.invalidState("subscription does not allow access")
	}
	if allowed != nil && s.ClassesUsed >= *allowed {
		return ierr.NewError("class allowance exhausted").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"classes_used":    s.ClassesUsed,
				"classes_allowed": *allowed,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	s.ClassesUsed++
	return nil
}

// UseGuestPass consumes one guest pass from the current period's allowance.
func (s *Subscription) UseGuestPass(allowed int) error {
	if !s.Status.AllowsAccess() {
		return s.invalidState("subscription does not allow access")
	}
	if s.GuestPassesUsed >= allowed {
		return ierr.NewError("guest pass allowance exhausted").
			WithReportableDetails(map[string]any{
				"subscription_id":      s.ID,
				"guest_passes_used":    s.GuestPassesUsed,
				"guest_passes_allowed": allowed,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	s.GuestPassesUsed++
	return nil
}
