package contract

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// MembershipContract is the legal agreement behind a subscription. It owns the
// signature flow, the cooling-off window, the commitment period with its early
// termination fee, and the notice-period cancellation flow.
type MembershipContract struct {
	ID             string `db:"id" json:"id"`
	ContractNumber string `db:"contract_number" json:"contract_number"`

	MemberID       string `db:"member_id" json:"member_id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	PlanID         string `db:"plan_id" json:"plan_id"`

	ContractType types.ContractType   `db:"contract_type" json:"contract_type"`
	ContractTerm types.ContractTerm   `db:"contract_term" json:"contract_term"`
	Status       types.ContractStatus `db:"status" json:"status"`

	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`

	SignedAt   *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	ApprovedBy *string    `db:"approved_by" json:"approved_by,omitempty"`

	CoolingOffEndDate time.Time  `db:"cooling_off_end_date" json:"cooling_off_end_date"`
	CommitmentMonths  int        `db:"commitment_months" json:"commitment_months"`
	CommitmentEndDate *time.Time `db:"commitment_end_date" json:"commitment_end_date,omitempty"`
	NoticePeriodDays  int        `db:"notice_period_days" json:"notice_period_days"`

	// Fees are snapshotted at signing so later plan price changes never
	// affect an existing contract.
	LockedMembershipFee types.TaxableFee `json:"locked_membership_fee"`
	LockedAdminFee      types.TaxableFee `json:"locked_admin_fee"`
	LockedJoinFee       types.TaxableFee `json:"locked_join_fee"`
	Currency            string           `db:"currency" json:"currency"`

	TerminationFeeType    types.TerminationFeeType `db:"termination_fee_type" json:"termination_fee_type"`
	TerminationFeeAmount  decimal.Decimal          `db:"termination_fee_amount" json:"termination_fee_amount"`
	TerminationFeePercent decimal.Decimal          `db:"termination_fee_percent" json:"termination_fee_percent"`

	CancellationRequestedAt   *time.Time                      `db:"cancellation_requested_at" json:"cancellation_requested_at,omitempty"`
	CancellationEffectiveDate *time.Time                      `db:"cancellation_effective_date" json:"cancellation_effective_date,omitempty"`
	CancelledAt               *time.Time                      `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationType          *types.ContractCancellationType `db:"cancellation_type" json:"cancellation_type,omitempty"`
	CancellationReason        *string                         `db:"cancellation_reason" json:"cancellation_reason,omitempty"`

	AutoRenew bool `db:"auto_renew" json:"auto_renew"`

	types.BaseModel
}

// FormatContractNumber renders a human-facing contract number from the
// per-tenant yearly sequence, e.g. LYQ-2026-000042.
func FormatContractNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, sequence)
}

// MonthlyRecurringGross is the locked monthly amount the member pays:
// membership plus admin fee, tax inclusive.
func (c *MembershipContract) MonthlyRecurringGross() decimal.Decimal {
	return c.LockedMembershipFee.GrossAmount().Add(c.LockedAdminFee.GrossAmount())
}

// CoolingOffRefund is the amount refunded on a cooling-off cancellation: the
// full join fee plus the first membership fee, tax inclusive.
func (c *MembershipContract) CoolingOffRefund() decimal.Decimal {
	return c.LockedJoinFee.GrossAmount().Add(c.LockedMembershipFee.GrossAmount())
}

// SignByMember records the member's signature on a pending contract.
func (c *MembershipContract) SignByMember(at time.Time) error {
	if c.Status != types.ContractStatusPendingSignature {
		return ierr.NewError("contract cannot be signed").
			WithHint("Only contracts pending signature can be signed").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if c.SignedAt != nil {
		return ierr.NewError("contract is already signed").
			WithHint("The contract has already been signed by the member").
			Mark(ierr.ErrInvalidOperation)
	}

	c.SignedAt = &at
	return nil
}

// ApproveByStaff activates a signed contract. The cooling-off window starts at
// the contract start date, not at approval.
func (c *MembershipContract) ApproveByStaff(at time.Time, staffID string) error {
	if c.Status != types.ContractStatusPendingSignature {
		return ierr.NewError("contract cannot be approved").
			WithHint("Only contracts pending signature can be approved").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if c.SignedAt == nil {
		return ierr.NewError("contract is not signed").
			WithHint("The member must sign the contract before staff approval").
			Mark(ierr.ErrInvalidOperation)
	}

	c.Status = types.ContractStatusActive
	c.ApprovedAt = &at
	c.ApprovedBy = &staffID
	return nil
}

// IsWithinCoolingOff reports whether the given date falls inside the statutory
// cooling-off window.
func (c *MembershipContract) IsWithinCoolingOff(at time.Time) bool {
	return !types.ToDate(at).After(types.ToDate(c.CoolingOffEndDate))
}

// CoolingOffDaysRemaining returns the days left in the cooling-off window,
// zero once it has lapsed.
func (c *MembershipContract) CoolingOffDaysRemaining(at time.Time) int {
	days := types.DaysBetween(at, c.CoolingOffEndDate)
	if days < 0 {
		return 0
	}
	return days
}

// IsWithinCommitment reports whether the given date falls inside the
// commitment period. Month-to-month contracts have no commitment.
func (c *MembershipContract) IsWithinCommitment(at time.Time) bool {
	if c.CommitmentEndDate == nil {
		return false
	}
	return types.ToDate(at).Before(types.ToDate(*c.CommitmentEndDate))
}

// CommitmentMonthsRemaining returns the whole months left in the commitment
// period, zero for month-to-month contracts or once the commitment has lapsed.
func (c *MembershipContract) CommitmentMonthsRemaining(at time.Time) int {
	if c.CommitmentEndDate == nil {
		return 0
	}
	return types.MonthsBetween(at, *c.CommitmentEndDate)
}

// CalculateEarlyTerminationFee returns the fee owed for cancelling at the
// given date. Zero inside the cooling-off window and outside the commitment
// period regardless of the configured fee type.
func (c *MembershipContract) CalculateEarlyTerminationFee(at time.Time) decimal.Decimal {
	if c.IsWithinCoolingOff(at) || !c.IsWithinCommitment(at) {
		return decimal.Zero
	}

	switch c.TerminationFeeType {
	case types.TerminationFeeTypeFlatFee:
		return c.TerminationFeeAmount.Round(types.MoneyPrecision)
	case types.TerminationFeeTypeRemainingMonths:
		months := decimal.NewFromInt(int64(c.CommitmentMonthsRemaining(at)))
		return c.MonthlyRecurringGross().Mul(months).Round(types.MoneyPrecision)
	case types.TerminationFeeTypePercentage:
		months := decimal.NewFromInt(int64(c.CommitmentMonthsRemaining(at)))
		remaining := c.MonthlyRecurringGross().Mul(months)
		return remaining.Mul(c.TerminationFeePercent).
			Div(decimal.NewFromInt(100)).
			Round(types.MoneyPrecision)
	default:
		return decimal.Zero
	}
}

// CancelWithinCoolingOff terminates the contract immediately and fee-free.
// Fails once the cooling-off window has lapsed.
func (c *MembershipContract) CancelWithinCoolingOff(at time.Time, reason string) error {
	if c.Status != types.ContractStatusActive {
		return ierr.NewError("contract is not active").
			WithHint("Only active contracts can be cancelled").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if !c.IsWithinCoolingOff(at) {
		return ierr.NewError("cooling-off period has ended").
			WithHint("Use the standard cancellation flow after the cooling-off period").
			WithReportableDetails(map[string]any{
				"contract_id":          c.ID,
				"cooling_off_end_date": c.CoolingOffEndDate.Format(time.DateOnly),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	effective := types.ToDate(at)
	cancellationType := types.ContractCancellationTypeCoolingOff

	c.Status = types.ContractStatusCancelled
	c.CancellationRequestedAt = &at
	c.CancellationEffectiveDate = &effective
	c.CancelledAt = &at
	c.CancellationType = &cancellationType
	c.CancellationReason = &reason
	return nil
}

// RequestCancellation moves an active contract into its notice period. The
// effective date is the later of notice expiry and commitment end, so the
// member serves out both.
func (c *MembershipContract) RequestCancellation(at time.Time, reason string) (time.Time, error) {
	if c.Status != types.ContractStatusActive {
		return time.Time{}, ierr.NewError("contract is not active").
			WithHint("Only active contracts can enter a notice period").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	effective := types.ToDate(at).AddDate(0, 0, c.NoticePeriodDays)
	if c.CommitmentEndDate != nil {
		commitmentEnd := types.ToDate(*c.CommitmentEndDate)
		if commitmentEnd.After(effective) {
			effective = commitmentEnd
		}
	}

	cancellationType := types.ContractCancellationTypeStandard

	c.Status = types.ContractStatusInNoticePeriod
	c.CancellationRequestedAt = &at
	c.CancellationEffectiveDate = &effective
	c.CancellationType = &cancellationType
	c.CancellationReason = &reason
	return effective, nil
}

// WithdrawCancellationRequest returns a contract in its notice period to
// active, clearing the pending cancellation.
func (c *MembershipContract) WithdrawCancellationRequest() error {
	if c.Status != types.ContractStatusInNoticePeriod {
		return ierr.NewError("contract has no cancellation to withdraw").
			WithHint("Only contracts in their notice period can withdraw a cancellation").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	c.Status = types.ContractStatusActive
	c.CancellationRequestedAt = nil
	c.CancellationEffectiveDate = nil
	c.CancellationType = nil
	c.CancellationReason = nil
	return nil
}

// CompleteCancellation finalizes a contract whose notice period has been
// served.
func (c *MembershipContract) CompleteCancellation(at time.Time) error {
	if c.Status != types.ContractStatusInNoticePeriod {
		return ierr.NewError("contract is not in a notice period").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	c.Status = types.ContractStatusCancelled
	c.CancelledAt = &at
	return nil
}

// Suspend freezes an active contract for disciplinary or payment reasons.
func (c *MembershipContract) Suspend() error {
	if c.Status != types.ContractStatusActive {
		return ierr.NewError("contract cannot be suspended").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	c.Status = types.ContractStatusSuspended
	return nil
}

// Reactivate returns a suspended contract to active.
func (c *MembershipContract) Reactivate() error {
	if c.Status != types.ContractStatusSuspended {
		return ierr.NewError("contract is not suspended").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	c.Status = types.ContractStatusActive
	return nil
}

// MarkExpired ends a fixed-term contract that reached its end date without
// renewal.
func (c *MembershipContract) MarkExpired() error {
	if c.Status != types.ContractStatusActive && c.Status != types.ContractStatusInNoticePeriod {
		return ierr.NewError("contract cannot expire").
			WithReportableDetails(map[string]any{
				"contract_id": c.ID,
				"status":      c.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	c.Status = types.ContractStatusExpired
	return nil
}
