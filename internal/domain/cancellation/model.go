package cancellation

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// CancellationRequest is one episode of the retention workflow: a member asks
// to leave, retention offers are presented, and the request either completes,
// is withdrawn, or is saved by an accepted offer.
type CancellationRequest struct {
	ID             string `db:"id" json:"id"`
	MemberID       string `db:"member_id" json:"member_id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	ContractID     string `db:"contract_id" json:"contract_id"`

	Status         types.CancellationRequestStatus  `db:"status" json:"status"`
	ReasonCategory types.CancellationReasonCategory `db:"reason_category" json:"reason_category"`
	ReasonDetails  *string                          `db:"reason_details" json:"reason_details,omitempty"`

	RequestedAt         time.Time  `db:"requested_at" json:"requested_at"`
	WithinCoolingOff    bool       `db:"within_cooling_off" json:"within_cooling_off"`
	NoticePeriodEndDate *time.Time `db:"notice_period_end_date" json:"notice_period_end_date,omitempty"`
	EffectiveDate       time.Time  `db:"effective_date" json:"effective_date"`

	EarlyTerminationFee decimal.Decimal `db:"early_termination_fee" json:"early_termination_fee"`
	FeeWaived           bool            `db:"fee_waived" json:"fee_waived"`
	FeeWaivedBy         *string         `db:"fee_waived_by" json:"fee_waived_by,omitempty"`
	FeeWaiverReason     *string         `db:"fee_waiver_reason" json:"fee_waiver_reason,omitempty"`

	AcceptedOfferID *string    `db:"accepted_offer_id" json:"accepted_offer_id,omitempty"`
	ExitSurveyID    *string    `db:"exit_survey_id" json:"exit_survey_id,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`

	types.BaseModel
}

// MarkInNoticePeriod transitions a fresh request into its notice period once
// retention offers have been generated.
func (r *CancellationRequest) MarkInNoticePeriod(noticeEnd time.Time) error {
	if r.Status != types.CancellationRequestStatusPending {
		return ierr.NewError("cancellation request is not pending").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
				"status":     r.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	end := types.ToDate(noticeEnd)
	r.Status = types.CancellationRequestStatusInNoticePeriod
	r.NoticePeriodEndDate = &end
	return nil
}

// EffectiveFee is the termination fee after any staff waiver.
func (r *CancellationRequest) EffectiveFee() decimal.Decimal {
	if r.FeeWaived {
		return decimal.Zero
	}
	return r.EarlyTerminationFee
}

// WaiveFee records a staff decision to forgive the early termination fee.
func (r *CancellationRequest) WaiveFee(staffID, reason string) error {
	if r.Status.IsTerminal() {
		return ierr.NewError("cancellation request is already resolved").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
				"status":     r.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	r.FeeWaived = true
	r.FeeWaivedBy = &staffID
	r.FeeWaiverReason = &reason
	return nil
}

// MarkSaved resolves the request after the member accepted a retention offer.
func (r *CancellationRequest) MarkSaved(at time.Time, offerID string) error {
	if r.Status.IsTerminal() {
		return ierr.NewError("cancellation request is already resolved").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
				"status":     r.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	r.Status = types.CancellationRequestStatusSaved
	r.AcceptedOfferID = &offerID
	r.ResolvedAt = &at
	return nil
}

// MarkWithdrawn resolves the request after the member changed their mind.
func (r *CancellationRequest) MarkWithdrawn(at time.Time) error {
	if r.Status.IsTerminal() {
		return ierr.NewError("cancellation request is already resolved").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
				"status":     r.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	r.Status = types.CancellationRequestStatusWithdrawn
	r.ResolvedAt = &at
	return nil
}

// MarkCompleted resolves the request once the cancellation takes effect.
func (r *CancellationRequest) MarkCompleted(at time.Time) error {
	if r.Status.IsTerminal() {
		return ierr.NewError("cancellation request is already resolved").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
				"status":     r.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	r.Status = types.CancellationRequestStatusCompleted
	r.ResolvedAt = &at
	return nil
}

// RetentionOffer is one incentive generated against a cancellation request.
type RetentionOffer struct {
	ID                    string `db:"id" json:"id"`
	CancellationRequestID string `db:"cancellation_request_id" json:"cancellation_request_id"`
	SubscriptionID        string `db:"subscription_id" json:"subscription_id"`
	MemberID              string `db:"member_id" json:"member_id"`

	OfferType types.RetentionOfferType   `db:"offer_type" json:"offer_type"`
	Status    types.RetentionOfferStatus `db:"status" json:"status"`

	Description types.LocalizedText `json:"description"`

	// Free-freeze offers.
	FreezeDays *int `db:"freeze_days" json:"freeze_days,omitempty"`

	// Discount offers.
	DiscountPercent *decimal.Decimal `db:"discount_percent" json:"discount_percent,omitempty"`
	DiscountMonths  *int             `db:"discount_months" json:"discount_months,omitempty"`

	// Downgrade offers.
	DowngradePlanID *string `db:"downgrade_plan_id" json:"downgrade_plan_id,omitempty"`

	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`

	types.BaseModel
}

// CanBeAccepted reports whether the offer is still pending and unexpired.
func (o *RetentionOffer) CanBeAccepted(at time.Time) bool {
	return o.Status == types.RetentionOfferStatusPending && at.Before(o.ExpiresAt)
}

// Accept marks the offer accepted. Expired or already-answered offers fail.
func (o *RetentionOffer) Accept(at time.Time) error {
	if o.Status != types.RetentionOfferStatusPending {
		return ierr.NewError("retention offer is already resolved").
			WithReportableDetails(map[string]any{
				"offer_id": o.ID,
				"status":   o.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	if !at.Before(o.ExpiresAt) {
		o.Status = types.RetentionOfferStatusExpired
		return ierr.NewError("retention offer has expired").
			WithReportableDetails(map[string]any{
				"offer_id":   o.ID,
				"expires_at": o.ExpiresAt.Format(time.RFC3339),
			}).
			Mark(ierr.ErrExpired)
	}
	o.Status = types.RetentionOfferStatusAccepted
	o.RespondedAt = &at
	return nil
}

// Decline marks the offer declined, whether by the member or because a
// sibling offer was accepted.
func (o *RetentionOffer) Decline(at time.Time) error {
	if o.Status != types.RetentionOfferStatusPending {
		return ierr.NewError("retention offer is already resolved").
			WithReportableDetails(map[string]any{
				"offer_id": o.ID,
				"status":   o.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	o.Status = types.RetentionOfferStatusDeclined
	o.RespondedAt = &at
	return nil
}

// Expire marks an offer that lapsed without a response, or whose episode was
// withdrawn.
func (o *RetentionOffer) Expire() error {
	if o.Status != types.RetentionOfferStatusPending {
		return ierr.NewError("retention offer is already resolved").
			WithReportableDetails(map[string]any{
				"offer_id": o.ID,
				"status":   o.Status,
			}).
			Mark(ierr.ErrExpired)
	}
	o.Status = types.RetentionOfferStatusExpired
	return nil
}

// ExitSurvey captures the member's feedback when leaving. One survey per
// subscription.
type ExitSurvey struct {
	ID                    string  `db:"id" json:"id"`
	SubscriptionID        string  `db:"subscription_id" json:"subscription_id"`
	MemberID              string  `db:"member_id" json:"member_id"`
	CancellationRequestID *string `db:"cancellation_request_id" json:"cancellation_request_id,omitempty"`

	// Rating is 1 to 5.
	Rating          int     `db:"rating" json:"rating"`
	WouldRecommend  bool    `db:"would_recommend" json:"would_recommend"`
	Feedback        *string `db:"feedback" json:"feedback,omitempty"`
	ImprovementArea *string `db:"improvement_area" json:"improvement_area,omitempty"`

	types.BaseModel
}
