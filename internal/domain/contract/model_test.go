package contract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedTermContract() *MembershipContract {
	start := date(2026, 1, 1)
	commitmentEnd := start.AddDate(1, 0, 0)
	return &MembershipContract{
		ID:                "contract_test_1",
		ContractNumber:    "LYQ-2026-000001",
		MemberID:          "member_1",
		SubscriptionID:    "subs_1",
		PlanID:            "plan_1",
		ContractType:      types.ContractTypeFixedTerm,
		ContractTerm:      types.ContractTermTwelveMonths,
		Status:            types.ContractStatusActive,
		StartDate:         start,
		CoolingOffEndDate: start.AddDate(0, 0, 7),
		CommitmentMonths:  12,
		CommitmentEndDate: &commitmentEnd,
		NoticePeriodDays:  30,
		LockedMembershipFee: types.TaxableFee{
			Amount:   decimal.NewFromInt(200),
			Currency: "SAR",
		},
		LockedJoinFee: types.TaxableFee{
			Amount:   decimal.NewFromInt(150),
			Currency: "SAR",
		},
		TerminationFeeType: types.TerminationFeeTypeRemainingMonths,
		Currency:           "SAR",
		BaseModel:          types.BaseModel{TenantID: "tenant_1", Status: types.StatusActive},
	}
}

func TestFormatContractNumber(t *testing.T) {
	assert.Equal(t, "LYQ-2026-000042", FormatContractNumber("LYQ", 2026, 42))
	assert.Equal(t, "LYQ-2027-123456", FormatContractNumber("LYQ", 2027, 123456))
}

func TestSignatureFlow(t *testing.T) {
	c := fixedTermContract()
	c.Status = types.ContractStatusPendingSignature

	require.Error(t, c.ApproveByStaff(date(2026, 1, 2), "staff_1"), "approval requires a signature")

	require.NoError(t, c.SignByMember(date(2026, 1, 1)))
	assert.Equal(t, types.ContractStatusPendingSignature, c.Status)

	err := c.SignByMember(date(2026, 1, 2))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))

	require.NoError(t, c.ApproveByStaff(date(2026, 1, 2), "staff_1"))
	assert.Equal(t, types.ContractStatusActive, c.Status)
	require.NotNil(t, c.ApprovedBy)
	assert.Equal(t, "staff_1", *c.ApprovedBy)
}

func TestCoolingOffWindow(t *testing.T) {
	c := fixedTermContract()

	// Day 3 of a 7-day window.
	assert.True(t, c.IsWithinCoolingOff(date(2026, 1, 4)))
	assert.Equal(t, 4, c.CoolingOffDaysRemaining(date(2026, 1, 4)))

	// The window's last day counts.
	assert.True(t, c.IsWithinCoolingOff(date(2026, 1, 8)))
	assert.Equal(t, 0, c.CoolingOffDaysRemaining(date(2026, 1, 8)))

	// Day 10: lapsed.
	assert.False(t, c.IsWithinCoolingOff(date(2026, 1, 11)))
	assert.Equal(t, 0, c.CoolingOffDaysRemaining(date(2026, 1, 11)))
}

func TestCalculateEarlyTerminationFee(t *testing.T) {
	t.Run("zero within cooling off", func(t *testing.T) {
		c := fixedTermContract()
		fee := c.CalculateEarlyTerminationFee(date(2026, 1, 4))
		assert.True(t, fee.IsZero())
	})

	t.Run("remaining months policy", func(t *testing.T) {
		c := fixedTermContract()
		// Past cooling-off, 8 whole months of the commitment left.
		fee := c.CalculateEarlyTerminationFee(date(2026, 4, 15))
		assert.Equal(t, "1600.00", fee.StringFixed(2))
	})

	t.Run("flat fee policy", func(t *testing.T) {
		c := fixedTermContract()
		c.TerminationFeeType = types.TerminationFeeTypeFlatFee
		c.TerminationFeeAmount = decimal.NewFromInt(500)
		fee := c.CalculateEarlyTerminationFee(date(2026, 4, 15))
		assert.Equal(t, "500.00", fee.StringFixed(2))
	})

	t.Run("percentage policy", func(t *testing.T) {
		c := fixedTermContract()
		c.TerminationFeeType = types.TerminationFeeTypePercentage
		c.TerminationFeePercent = decimal.NewFromInt(50)
		fee := c.CalculateEarlyTerminationFee(date(2026, 4, 15))
		assert.Equal(t, "800.00", fee.StringFixed(2))
	})

	t.Run("none policy", func(t *testing.T) {
		c := fixedTermContract()
		c.TerminationFeeType = types.TerminationFeeTypeNone
		assert.True(t, c.CalculateEarlyTerminationFee(date(2026, 4, 15)).IsZero())
	})

	t.Run("zero outside commitment", func(t *testing.T) {
		c := fixedTermContract()
		assert.True(t, c.CalculateEarlyTerminationFee(date(2027, 2, 1)).IsZero())
	})

	t.Run("zero for month to month", func(t *testing.T) {
		c := fixedTermContract()
		c.ContractType = types.ContractTypeMonthToMonth
		c.CommitmentMonths = 0
		c.CommitmentEndDate = nil
		assert.True(t, c.CalculateEarlyTerminationFee(date(2026, 4, 15)).IsZero())
	})
}

func TestCoolingOffRefund(t *testing.T) {
	c := fixedTermContract()
	// Join fee 150 plus first membership fee 200, no tax.
	assert.Equal(t, "350.00", c.CoolingOffRefund().StringFixed(2))

	c.LockedMembershipFee.TaxRate = decimal.NewFromInt(15)
	assert.Equal(t, "380.00", c.CoolingOffRefund().StringFixed(2))
}

func TestCancelWithinCoolingOff(t *testing.T) {
	t.Run("inside the window", func(t *testing.T) {
		c := fixedTermContract()
		require.NoError(t, c.CancelWithinCoolingOff(date(2026, 1, 4), "changed my mind"))
		assert.Equal(t, types.ContractStatusCancelled, c.Status)
		require.NotNil(t, c.CancellationType)
		assert.Equal(t, types.ContractCancellationTypeCoolingOff, *c.CancellationType)
		assert.NotNil(t, c.CancelledAt)
	})

	t.Run("after the window", func(t *testing.T) {
		c := fixedTermContract()
		err := c.CancelWithinCoolingOff(date(2026, 2, 1), "too late")
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
		assert.Equal(t, types.ContractStatusActive, c.Status)
	})
}

func TestRequestCancellation(t *testing.T) {
	t.Run("effective date honors commitment end", func(t *testing.T) {
		c := fixedTermContract()
		effective, err := c.RequestCancellation(date(2026, 3, 1), "relocating")
		require.NoError(t, err)
		// Commitment runs to 2027-01-01, later than 30 days notice.
		assert.Equal(t, date(2027, 1, 1), effective)
		assert.Equal(t, types.ContractStatusInNoticePeriod, c.Status)
	})

	t.Run("effective date is notice expiry without commitment", func(t *testing.T) {
		c := fixedTermContract()
		c.CommitmentEndDate = nil
		c.CommitmentMonths = 0
		effective, err := c.RequestCancellation(date(2026, 3, 1), "relocating")
		require.NoError(t, err)
		assert.Equal(t, date(2026, 3, 31), effective)
	})

	t.Run("requires active status", func(t *testing.T) {
		c := fixedTermContract()
		c.Status = types.ContractStatusCancelled
		_, err := c.RequestCancellation(date(2026, 3, 1), "relocating")
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
	})
}

func TestWithdrawAndComplete(t *testing.T) {
	c := fixedTermContract()
	_, err := c.RequestCancellation(date(2026, 3, 1), "relocating")
	require.NoError(t, err)

	require.NoError(t, c.WithdrawCancellationRequest())
	assert.Equal(t, types.ContractStatusActive, c.Status)
	assert.Nil(t, c.CancellationEffectiveDate)
	assert.Nil(t, c.CancellationReason)

	require.Error(t, c.CompleteCancellation(date(2026, 4, 1)), "nothing to complete after withdrawal")

	_, err = c.RequestCancellation(date(2026, 3, 1), "relocating")
	require.NoError(t, err)
	require.NoError(t, c.CompleteCancellation(date(2027, 1, 1)))
	assert.Equal(t, types.ContractStatusCancelled, c.Status)
}

func TestSuspendReactivate(t *testing.T) {
	c := fixedTermContract()
	require.NoError(t, c.Suspend())
	assert.Equal(t, types.ContractStatusSuspended, c.Status)

	require.Error(t, c.Suspend())

	require.NoError(t, c.Reactivate())
	assert.Equal(t, types.ContractStatusActive, c.Status)
}
