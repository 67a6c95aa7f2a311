package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/types"
	"github.com/liyaqa/membership/internal/validator"
)

type ChangePlanRequest struct {
	SubscriptionID      string               `json:"subscription_id" validate:"required"`
	NewPlanID           string               `json:"new_plan_id" validate:"required"`
	ProrationPreference *types.ProrationMode `json:"proration_preference,omitempty"`
}

func (r *ChangePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ProrationPreference != nil {
		return r.ProrationPreference.Validate()
	}
	return nil
}

type CancelScheduledChangeRequest struct {
	Reason      string `json:"reason" validate:"required"`
	CancelledBy string `json:"cancelled_by" validate:"required"`
}

func (r *CancelScheduledChangeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PlanChangePreviewResponse is the read-only what-if for a plan change
type PlanChangePreviewResponse struct {
	SubscriptionID string               `json:"subscription_id"`
	CurrentPlanID  string               `json:"current_plan_id"`
	NewPlanID      string               `json:"new_plan_id"`
	ChangeType     types.PlanChangeType `json:"change_type"`
	ProrationMode  types.ProrationMode  `json:"proration_mode"`
	Credit         decimal.Decimal      `json:"credit"`
	Charge         decimal.Decimal      `json:"charge"`
	Net            decimal.Decimal      `json:"net"`
	EffectiveDate  time.Time            `json:"effective_date"`
	Currency       string               `json:"currency"`
	Summary        types.LocalizedText  `json:"summary"`
}

// PlanChangeResponse is the outcome of an executed or scheduled plan change
type PlanChangeResponse struct {
	History         *planchange.PlanChangeHistory   `json:"history,omitempty"`
	ScheduledChange *planchange.ScheduledPlanChange `json:"scheduled_change,omitempty"`
}

// ScheduledChangeResponse is the API shape of a scheduled plan change
type ScheduledChangeResponse struct {
	*planchange.ScheduledPlanChange
}
