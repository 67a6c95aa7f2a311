package freeze

import (
	"time"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// BalanceEntry is one source-tagged grant of freeze days. Consumption draws
// entries down in the order they were granted.
type BalanceEntry struct {
	ID        string                 `db:"id" json:"id"`
	BalanceID string                 `db:"balance_id" json:"balance_id"`
	Source    types.FreezeDaysSource `db:"source" json:"source"`
	Granted   int                    `db:"granted" json:"granted"`
	Used      int                    `db:"used" json:"used"`
	GrantedAt time.Time              `db:"granted_at" json:"granted_at"`
}

func (e *BalanceEntry) remaining() int {
	return e.Granted - e.Used
}

// MemberFreezeBalance holds a member's spendable freeze days across all
// sources.
type MemberFreezeBalance struct {
	ID       string         `db:"id" json:"id"`
	MemberID string         `db:"member_id" json:"member_id"`
	Entries  []BalanceEntry `json:"entries"`

	types.BaseModel
}

// AvailableDays is the total unconsumed days across all entries.
func (b *MemberFreezeBalance) AvailableDays() int {
	total := 0
	for i := range b.Entries {
		total += b.Entries[i].remaining()
	}
	return total
}

// Grant adds days from the given source.
func (b *MemberFreezeBalance) Grant(days int, source types.FreezeDaysSource, at time.Time) error {
	if days <= 0 {
		return ierr.NewError("granted freeze days must be positive").
			WithReportableDetails(map[string]any{
				"member_id": b.MemberID,
				"days":      days,
			}).
			Mark(ierr.ErrValidation)
	}

	b.Entries = append(b.Entries, BalanceEntry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_ENTRY),
		BalanceID: b.ID,
		Source:    source,
		Granted:   days,
		GrantedAt: at,
	})
	return nil
}

// Consume draws up to the requested days from the balance, oldest entries
// first, and returns how many were actually consumed. Requests beyond the
// available balance are clamped, never rejected.
func (b *MemberFreezeBalance) Consume(requested int) int {
	if requested <= 0 {
		return 0
	}

	consumed := 0
	for i := range b.Entries {
		if consumed == requested {
			break
		}
		take := b.Entries[i].remaining()
		if take > requested-consumed {
			take = requested - consumed
		}
		b.Entries[i].Used += take
		consumed += take
	}
	return consumed
}

// FreezeHistory is the immutable ledger of one freeze event. A record is
// active until closed by an unfreeze.
type FreezeHistory struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	MemberID       string `db:"member_id" json:"member_id"`

	FreezeType  types.FreezeType `db:"freeze_type" json:"freeze_type"`
	Reason      *string          `db:"reason" json:"reason,omitempty"`
	DocumentRef *string          `db:"document_ref" json:"document_ref,omitempty"`

	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	DaysRequested int       `db:"days_requested" json:"days_requested"`
	DaysConsumed  int       `db:"days_consumed" json:"days_consumed"`

	OriginalEndDate  time.Time `db:"original_end_date" json:"original_end_date"`
	NewEndDate       time.Time `db:"new_end_date" json:"new_end_date"`
	ContractExtended bool      `db:"contract_extended" json:"contract_extended"`

	ClosedAt *time.Time `db:"closed_at" json:"closed_at,omitempty"`

	types.BaseModel
}

// IsActive reports whether the freeze has not yet been closed.
func (h *FreezeHistory) IsActive() bool {
	return h.ClosedAt == nil
}

// Close ends the freeze record at the given time.
func (h *FreezeHistory) Close(at time.Time) error {
	if h.ClosedAt != nil {
		return ierr.NewError("freeze record is already closed").
			WithReportableDetails(map[string]any{
				"freeze_id": h.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	h.ClosedAt = &at
	return nil
}

// FreezePackage is a purchasable bundle of freeze days.
type FreezePackage struct {
	ID    string              `db:"id" json:"id"`
	Name  types.LocalizedText `json:"name"`
	Days  int                 `db:"days" json:"days"`
	Price types.TaxableFee    `json:"price"`

	types.BaseModel
}
