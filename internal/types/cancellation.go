package types

import (
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/samber/lo"
)

// CancellationRequestStatus is the status of a cancellation request
type CancellationRequestStatus string

const (
	CancellationRequestStatusPending        CancellationRequestStatus = "pending"
	CancellationRequestStatusInNoticePeriod CancellationRequestStatus = "in_notice_period"
	CancellationRequestStatusSaved          CancellationRequestStatus = "saved"
	CancellationRequestStatusWithdrawn      CancellationRequestStatus = "withdrawn"
	CancellationRequestStatusCompleted      CancellationRequestStatus = "completed"
)

func (s CancellationRequestStatus) String() string {
	return string(s)
}

func (s CancellationRequestStatus) Validate() error {
	allowed := []CancellationRequestStatus{
		CancellationRequestStatusPending,
		CancellationRequestStatusInNoticePeriod,
		CancellationRequestStatusSaved,
		CancellationRequestStatusWithdrawn,
		CancellationRequestStatusCompleted,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid cancellation request status").
			WithHint("Invalid cancellation request status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the request can no longer change state.
// At most one non-terminal request may exist per subscription.
func (s CancellationRequestStatus) IsTerminal() bool {
	return lo.Contains([]CancellationRequestStatus{
		CancellationRequestStatusSaved,
		CancellationRequestStatusWithdrawn,
		CancellationRequestStatusCompleted,
	}, s)
}

// CancellationReasonCategory buckets why a member is leaving
type CancellationReasonCategory string

const (
	CancellationReasonRelocation      CancellationReasonCategory = "relocation"
	CancellationReasonFinancial       CancellationReasonCategory = "financial"
	CancellationReasonHealth          CancellationReasonCategory = "health"
	CancellationReasonDissatisfaction CancellationReasonCategory = "dissatisfaction"
	CancellationReasonCompetitor      CancellationReasonCategory = "competitor"
	CancellationReasonLackOfUse       CancellationReasonCategory = "lack_of_use"
	CancellationReasonOther           CancellationReasonCategory = "other"
)

func (c CancellationReasonCategory) String() string {
	return string(c)
}

func (c CancellationReasonCategory) Validate() error {
	allowed := []CancellationReasonCategory{
		CancellationReasonRelocation,
		CancellationReasonFinancial,
		CancellationReasonHealth,
		CancellationReasonDissatisfaction,
		CancellationReasonCompetitor,
		CancellationReasonLackOfUse,
		CancellationReasonOther,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid cancellation reason category").
			WithHint("Invalid cancellation reason category").
			WithReportableDetails(map[string]any{
				"category":          c,
				"allowed_categories": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RetentionOfferType is the kind of incentive presented during the notice period
type RetentionOfferType string

const (
	RetentionOfferTypeFreeFreeze RetentionOfferType = "free_freeze"
	RetentionOfferTypeDiscount   RetentionOfferType = "discount"
	RetentionOfferTypeDowngrade  RetentionOfferType = "downgrade"
)

func (t RetentionOfferType) String() string {
	return string(t)
}

func (t RetentionOfferType) Validate() error {
	allowed := []RetentionOfferType{
		RetentionOfferTypeFreeFreeze,
		RetentionOfferTypeDiscount,
		RetentionOfferTypeDowngrade,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid retention offer type").
			WithHint("Retention offer type must be free_freeze, discount or downgrade").
			WithReportableDetails(map[string]any{
				"offer_type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RetentionOfferStatus is the status of a retention offer
type RetentionOfferStatus string

const (
	RetentionOfferStatusPending  RetentionOfferStatus = "pending"
	RetentionOfferStatusAccepted RetentionOfferStatus = "accepted"
	RetentionOfferStatusDeclined RetentionOfferStatus = "declined"
	RetentionOfferStatusExpired  RetentionOfferStatus = "expired"
)

func (s RetentionOfferStatus) String() string {
	return string(s)
}

func (s RetentionOfferStatus) Validate() error {
	allowed := []RetentionOfferStatus{
		RetentionOfferStatusPending,
		RetentionOfferStatusAccepted,
		RetentionOfferStatusDeclined,
		RetentionOfferStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid retention offer status").
			WithHint("Invalid retention offer status").
			WithReportableDetails(map[string]any{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
