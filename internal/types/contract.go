package types

import (
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/samber/lo"
)

// ContractStatus is the status of a membership contract
type ContractStatus string

const (
	ContractStatusPendingSignature ContractStatus = "pending_signature"
	ContractStatusActive           ContractStatus = "active"
	ContractStatusInNoticePeriod   ContractStatus = "in_notice_period"
	ContractStatusSuspended        ContractStatus = "suspended"
	ContractStatusCancelled        ContractStatus = "cancelled"
	ContractStatusExpired          ContractStatus = "expired"
)

func (s ContractStatus) String() string {
	return string(s)
}

func (s ContractStatus) Validate() error {
	allowed := []ContractStatus{
		ContractStatusPendingSignature,
		ContractStatusActive,
		ContractStatusInNoticePeriod,
		ContractStatusSuspended,
		ContractStatusCancelled,
		ContractStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid contract status").
			WithHint("Invalid contract status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AllowsAccess reports whether the contract still grants club access.
// Members in notice period retain access until the effective date.
func (s ContractStatus) AllowsAccess() bool {
	return s == ContractStatusActive || s == ContractStatusInNoticePeriod
}

// ContractType determines whether the contract carries a commitment
type ContractType string

const (
	ContractTypeMonthToMonth ContractType = "month_to_month"
	ContractTypeFixedTerm    ContractType = "fixed_term"
)

func (t ContractType) String() string {
	return string(t)
}

func (t ContractType) Validate() error {
	allowed := []ContractType{ContractTypeMonthToMonth, ContractTypeFixedTerm}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid contract type").
			WithHint("Contract type must be month_to_month or fixed_term").
			WithReportableDetails(map[string]any{
				"contract_type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ContractTerm is the duration of a fixed-term contract
type ContractTerm string

const (
	ContractTermOneMonth     ContractTerm = "one_month"
	ContractTermThreeMonths  ContractTerm = "three_months"
	ContractTermSixMonths    ContractTerm = "six_months"
	ContractTermTwelveMonths ContractTerm = "twelve_months"
)

func (t ContractTerm) String() string {
	return string(t)
}

// ToMonths returns the number of commitment months the term implies
func (t ContractTerm) ToMonths() int {
	switch t {
	case ContractTermOneMonth:
		return 1
	case ContractTermThreeMonths:
		return 3
	case ContractTermSixMonths:
		return 6
	case ContractTermTwelveMonths:
		return 12
	default:
		return 0
	}
}

func (t ContractTerm) Validate() error {
	allowed := []ContractTerm{
		ContractTermOneMonth,
		ContractTermThreeMonths,
		ContractTermSixMonths,
		ContractTermTwelveMonths,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid contract term").
			WithHint("Contract term must be one, three, six or twelve months").
			WithReportableDetails(map[string]any{
				"contract_term": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TerminationFeeType determines how the early termination fee is calculated
type TerminationFeeType string

const (
	TerminationFeeTypeNone            TerminationFeeType = "none"
	TerminationFeeTypeFlatFee         TerminationFeeType = "flat_fee"
	TerminationFeeTypeRemainingMonths TerminationFeeType = "remaining_months"
	TerminationFeeTypePercentage      TerminationFeeType = "percentage"
)

func (t TerminationFeeType) String() string {
	return string(t)
}

func (t TerminationFeeType) Validate() error {
	allowed := []TerminationFeeType{
		TerminationFeeTypeNone,
		TerminationFeeTypeFlatFee,
		TerminationFeeTypeRemainingMonths,
		TerminationFeeTypePercentage,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid termination fee type").
			WithHint("Termination fee type must be none, flat_fee, remaining_months or percentage").
			WithReportableDetails(map[string]any{
				"fee_type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ContractCancellationType records how a contract cancellation was initiated
type ContractCancellationType string

const (
	ContractCancellationTypeCoolingOff ContractCancellationType = "cooling_off"
	ContractCancellationTypeStandard   ContractCancellationType = "standard"
	ContractCancellationTypeImmediate  ContractCancellationType = "immediate"
)

func (t ContractCancellationType) String() string {
	return string(t)
}
