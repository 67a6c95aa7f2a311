package types

import (
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/samber/lo"
)

// PlanChangeType is the direction of a plan change
type PlanChangeType string

const (
	PlanChangeTypeUpgrade   PlanChangeType = "upgrade"
	PlanChangeTypeDowngrade PlanChangeType = "downgrade"
)

func (t PlanChangeType) String() string {
	return string(t)
}

// ProrationMode determines how credit and charge amounts are computed for a plan change
type ProrationMode string

const (
	// ProrationModeProrateImmediately credits remaining days on the old plan and
	// charges remaining days on the new plan, both at daily rates.
	ProrationModeProrateImmediately ProrationMode = "prorate_immediately"
	// ProrationModeEndOfPeriod defers the switch to the end of the billing period
	// with no proration amounts.
	ProrationModeEndOfPeriod ProrationMode = "end_of_period"
	// ProrationModeFullPeriodCredit credits the full old-plan price and charges the
	// full new-plan price regardless of days remaining.
	ProrationModeFullPeriodCredit ProrationMode = "full_period_credit"
	// ProrationModeNoProration switches immediately with zero amounts.
	ProrationModeNoProration ProrationMode = "no_proration"
)

func (m ProrationMode) String() string {
	return string(m)
}

func (m ProrationMode) Validate() error {
	allowed := []ProrationMode{
		ProrationModeProrateImmediately,
		ProrationModeEndOfPeriod,
		ProrationModeFullPeriodCredit,
		ProrationModeNoProration,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid proration mode").
			WithHint("Proration mode must be prorate_immediately, end_of_period, full_period_credit or no_proration").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsImmediate reports whether the mode executes the change now rather than scheduling it
func (m ProrationMode) IsImmediate() bool {
	return m != ProrationModeEndOfPeriod
}

// ScheduledChangeStatus is the status of a scheduled plan change
type ScheduledChangeStatus string

const (
	ScheduledChangeStatusPending   ScheduledChangeStatus = "pending"
	ScheduledChangeStatusProcessed ScheduledChangeStatus = "processed"
	ScheduledChangeStatusCancelled ScheduledChangeStatus = "cancelled"
)

func (s ScheduledChangeStatus) String() string {
	return string(s)
}

func (s ScheduledChangeStatus) Validate() error {
	allowed := []ScheduledChangeStatus{
		ScheduledChangeStatusPending,
		ScheduledChangeStatusProcessed,
		ScheduledChangeStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid scheduled change status").
			WithHint("Invalid scheduled change status").
			WithReportableDetails(map[string]any{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
