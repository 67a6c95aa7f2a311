package plan

import (
	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/types"
)

// MembershipPlan defines a sellable club membership: its recurring fee,
// one-time fees, and the entitlements a subscriber receives each period.
type MembershipPlan struct {
	ID   string              `db:"id" json:"id"`
	Name types.LocalizedText `json:"name"`

	MembershipFee types.TaxableFee `json:"membership_fee"`
	AdminFee      types.TaxableFee `json:"admin_fee"`
	JoinFee       types.TaxableFee `json:"join_fee"`

	// DurationMonths is the length of one billing period.
	DurationMonths int `db:"duration_months" json:"duration_months"`

	FreezeDaysAllowed  int  `db:"freeze_days_allowed" json:"freeze_days_allowed"`
	ClassesAllowed     *int `db:"classes_allowed" json:"classes_allowed,omitempty"`
	GuestPassesAllowed int  `db:"guest_passes_allowed" json:"guest_passes_allowed"`

	types.BaseModel
}

// RecurringTotal is the gross recurring amount a subscriber pays per period:
// membership fee plus admin fee, both tax inclusive. Join fees are one-time
// and excluded.
func (p *MembershipPlan) RecurringTotal() decimal.Decimal {
	return p.MembershipFee.GrossAmount().Add(p.AdminFee.GrossAmount())
}

// IsUnlimitedClasses reports whether the plan places no cap on class bookings.
func (p *MembershipPlan) IsUnlimitedClasses() bool {
	return p.ClassesAllowed == nil
}
