package planchange

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// ScheduledPlanChange is a deferred plan switch, applied by the scheduled
// change processor at the effective date.
type ScheduledPlanChange struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	MemberID       string `db:"member_id" json:"member_id"`

	FromPlanID string `db:"from_plan_id" json:"from_plan_id"`
	ToPlanID   string `db:"to_plan_id" json:"to_plan_id"`

	ChangeType    types.PlanChangeType        `db:"change_type" json:"change_type"`
	ProrationMode types.ProrationMode         `db:"proration_mode" json:"proration_mode"`
	Status        types.ScheduledChangeStatus `db:"status" json:"status"`

	EffectiveDate time.Time  `db:"effective_date" json:"effective_date"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`

	// PlanChangeHistoryID points at the audit record written when the change
	// was applied.
	PlanChangeHistoryID *string `db:"plan_change_history_id" json:"plan_change_history_id,omitempty"`

	types.BaseModel
}

// MarkProcessed finalizes the change after the processor applied it, linking
// the history record the application produced.
func (c *ScheduledPlanChange) MarkProcessed(at time.Time, historyID string) error {
	if c.Status != types.ScheduledChangeStatusPending {
		return ierr.NewError("scheduled plan change is not pending").
			WithReportableDetails(map[string]any{
				"change_id": c.ID,
				"status":    c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	c.Status = types.ScheduledChangeStatusProcessed
	c.ProcessedAt = &at
	c.PlanChangeHistoryID = &historyID
	return nil
}

// Cancel withdraws a pending change before its effective date.
func (c *ScheduledPlanChange) Cancel() error {
	if c.Status != types.ScheduledChangeStatusPending {
		return ierr.NewError("scheduled plan change is not pending").
			WithReportableDetails(map[string]any{
				"change_id": c.ID,
				"status":    c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	c.Status = types.ScheduledChangeStatusCancelled
	return nil
}

// PlanChangeHistory is the immutable audit record of an applied plan change
// and its proration outcome.
type PlanChangeHistory struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	MemberID       string `db:"member_id" json:"member_id"`

	FromPlanID string `db:"from_plan_id" json:"from_plan_id"`
	ToPlanID   string `db:"to_plan_id" json:"to_plan_id"`

	ChangeType    types.PlanChangeType `db:"change_type" json:"change_type"`
	ProrationMode types.ProrationMode  `db:"proration_mode" json:"proration_mode"`

	CreditAmount decimal.Decimal `db:"credit_amount" json:"credit_amount"`
	ChargeAmount decimal.Decimal `db:"charge_amount" json:"charge_amount"`
	NetAmount    decimal.Decimal `db:"net_amount" json:"net_amount"`
	Currency     string          `db:"currency" json:"currency"`

	EffectiveDate time.Time `db:"effective_date" json:"effective_date"`

	types.BaseModel
}
