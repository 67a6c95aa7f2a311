package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/contract"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
	"github.com/liyaqa/membership/internal/validator"
)

type CreateContractRequest struct {
	MemberID     string             `json:"member_id" validate:"required"`
	PlanID       string             `json:"plan_id" validate:"required"`
	ContractType types.ContractType `json:"contract_type" validate:"required"`
	ContractTerm types.ContractTerm `json:"contract_term,omitempty"`
	StartDate    time.Time          `json:"start_date" validate:"required"`
	AutoRenew    bool               `json:"auto_renew"`

	// NoticePeriodDays falls back to the configured default when zero.
	NoticePeriodDays int `json:"notice_period_days,omitempty" validate:"omitempty,min=0"`

	TerminationFeeType    types.TerminationFeeType `json:"termination_fee_type,omitempty"`
	TerminationFeeAmount  decimal.Decimal          `json:"termination_fee_amount,omitempty"`
	TerminationFeePercent decimal.Decimal          `json:"termination_fee_percent,omitempty"`
}

func (r *CreateContractRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.ContractType.Validate(); err != nil {
		return err
	}
	if r.ContractType == types.ContractTypeFixedTerm {
		if err := r.ContractTerm.Validate(); err != nil {
			return err
		}
	}
	if r.TerminationFeeType != "" {
		if err := r.TerminationFeeType.Validate(); err != nil {
			return err
		}
	}
	if r.TerminationFeeAmount.IsNegative() || r.TerminationFeePercent.IsNegative() {
		return ierr.NewError("termination fee values cannot be negative").
			WithHint("Termination fee amount and percent must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type ApproveContractRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
}

func (r *ApproveContractRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CoolingOffCancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *CoolingOffCancelRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ContractResponse is the API shape of a membership contract
type ContractResponse struct {
	*contract.MembershipContract
}

// CoolingOffCancelResponse reports the outcome of a cooling-off cancellation
type CoolingOffCancelResponse struct {
	Contract     *ContractResponse `json:"contract"`
	RefundAmount decimal.Decimal   `json:"refund_amount"`
	Currency     string            `json:"currency"`
}
