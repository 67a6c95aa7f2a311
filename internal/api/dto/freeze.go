package dto

import (
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/types"
	"github.com/liyaqa/membership/internal/validator"
)

type FreezeSubscriptionRequest struct {
	SubscriptionID string           `json:"subscription_id" validate:"required"`
	Days           int              `json:"days" validate:"required,min=1"`
	FreezeType     types.FreezeType `json:"freeze_type" validate:"required"`
	Reason         *string          `json:"reason,omitempty"`
	DocumentRef    *string          `json:"document_ref,omitempty"`
}

func (r *FreezeSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.FreezeType.Validate()
}

type GrantFreezeDaysRequest struct {
	MemberID string                 `json:"member_id" validate:"required"`
	Days     int                    `json:"days" validate:"required,min=1"`
	Source   types.FreezeDaysSource `json:"source" validate:"required"`
}

func (r *GrantFreezeDaysRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Source.Validate()
}

type PurchaseFreezeDaysRequest struct {
	MemberID  string `json:"member_id" validate:"required"`
	PackageID string `json:"package_id" validate:"required"`
}

func (r *PurchaseFreezeDaysRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// FreezeBalanceResponse is the API shape of a member's freeze balance
type FreezeBalanceResponse struct {
	*freeze.MemberFreezeBalance
	AvailableDays int `json:"available_days"`
}

// FreezeHistoryResponse is the API shape of one freeze event
type FreezeHistoryResponse struct {
	*freeze.FreezeHistory
}
