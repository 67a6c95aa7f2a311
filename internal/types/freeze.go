package types

import (
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/samber/lo"
)

// FreezeType is the business reason class for a subscription freeze
type FreezeType string

const (
	FreezeTypeVacation FreezeType = "vacation"
	FreezeTypeMedical  FreezeType = "medical"
	FreezeTypeTravel   FreezeType = "travel"
	FreezeTypeOther    FreezeType = "other"
)

func (t FreezeType) String() string {
	return string(t)
}

func (t FreezeType) Validate() error {
	allowed := []FreezeType{
		FreezeTypeVacation,
		FreezeTypeMedical,
		FreezeTypeTravel,
		FreezeTypeOther,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid freeze type").
			WithHint("Freeze type must be vacation, medical, travel or other").
			WithReportableDetails(map[string]any{
				"freeze_type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FreezeDaysSource tags where granted freeze days came from
type FreezeDaysSource string

const (
	FreezeDaysSourcePlan         FreezeDaysSource = "plan"
	FreezeDaysSourcePurchased    FreezeDaysSource = "purchased"
	FreezeDaysSourcePromotional  FreezeDaysSource = "promotional"
	FreezeDaysSourceCompensation FreezeDaysSource = "compensation"
	FreezeDaysSourceRetention    FreezeDaysSource = "retention"
)

func (s FreezeDaysSource) String() string {
	return string(s)
}

func (s FreezeDaysSource) Validate() error {
	allowed := []FreezeDaysSource{
		FreezeDaysSourcePlan,
		FreezeDaysSourcePurchased,
		FreezeDaysSourcePromotional,
		FreezeDaysSourceCompensation,
		FreezeDaysSourceRetention,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid freeze days source").
			WithHint("Freeze days source must be plan, purchased, promotional, compensation or retention").
			WithReportableDetails(map[string]any{
				"source": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
