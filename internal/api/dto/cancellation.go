package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/types"
	"github.com/liyaqa/membership/internal/validator"
)

type RequestCancellationRequest struct {
	SubscriptionID string                           `json:"subscription_id" validate:"required"`
	ReasonCategory types.CancellationReasonCategory `json:"reason_category" validate:"required"`
	ReasonDetails  *string                          `json:"reason_details,omitempty"`
}

func (r *RequestCancellationRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ReasonCategory.Validate()
}

type WithdrawCancellationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *WithdrawCancellationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type WaiveTerminationFeeRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
}

func (r *WaiveTerminationFeeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubmitExitSurveyRequest struct {
	SubscriptionID  string  `json:"subscription_id" validate:"required"`
	Rating          int     `json:"rating" validate:"required,min=1,max=5"`
	WouldRecommend  bool    `json:"would_recommend"`
	Feedback        *string `json:"feedback,omitempty"`
	ImprovementArea *string `json:"improvement_area,omitempty"`
}

func (r *SubmitExitSurveyRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RetentionOfferPreview describes a candidate offer without persisting it
type RetentionOfferPreview struct {
	OfferType       types.RetentionOfferType `json:"offer_type"`
	Description     types.LocalizedText      `json:"description"`
	FreezeDays      *int                     `json:"freeze_days,omitempty"`
	DiscountPercent *decimal.Decimal         `json:"discount_percent,omitempty"`
	DiscountMonths  *int                     `json:"discount_months,omitempty"`
	DowngradePlanID *string                  `json:"downgrade_plan_id,omitempty"`
}

// CancellationPreviewResponse is the read-only what-if for a cancellation
type CancellationPreviewResponse struct {
	SubscriptionID          string                  `json:"subscription_id"`
	WithinCoolingOff        bool                    `json:"within_cooling_off"`
	CoolingOffDaysRemaining int                     `json:"cooling_off_days_remaining"`
	WithinCommitment        bool                    `json:"within_commitment"`
	NoticePeriodEndDate     *time.Time              `json:"notice_period_end_date,omitempty"`
	EffectiveDate           time.Time               `json:"effective_date"`
	TerminationFee          decimal.Decimal         `json:"termination_fee"`
	RefundAmount            decimal.Decimal         `json:"refund_amount"`
	Currency                string                  `json:"currency"`
	Offers                  []RetentionOfferPreview `json:"offers"`
}

// CancellationRequestResponse is the API shape of a cancellation request
type CancellationRequestResponse struct {
	*cancellation.CancellationRequest
	Offers []*cancellation.RetentionOffer `json:"offers,omitempty"`
}

// RetentionOfferResponse is the API shape of a retention offer
type RetentionOfferResponse struct {
	*cancellation.RetentionOffer
}

// ExitSurveyResponse is the API shape of an exit survey
type ExitSurveyResponse struct {
	*cancellation.ExitSurvey
}

// RetentionRateResponse reports how many cancellation episodes were retained
type RetentionRateResponse struct {
	Since          time.Time       `json:"since"`
	TotalResolved  int64           `json:"total_resolved"`
	TotalRetained  int64           `json:"total_retained"`
	RetentionRate  decimal.Decimal `json:"retention_rate"`
}

// ExitSurveyAnalyticsResponse aggregates exit survey feedback
type ExitSurveyAnalyticsResponse struct {
	TotalSurveys     int64           `json:"total_surveys"`
	AverageRating    decimal.Decimal `json:"average_rating"`
	RecommendPercent decimal.Decimal `json:"recommend_percent"`
}

// BatchResultResponse summarizes one scheduled batch run
type BatchResultResponse struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}
