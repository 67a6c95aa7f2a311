package contract

import (
	"context"

	"github.com/liyaqa/membership/internal/types"
)

type Repository interface {
	Create(ctx context.Context, contract *MembershipContract) error
	Get(ctx context.Context, id string) (*MembershipContract, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*MembershipContract, error)
	GetByNumber(ctx context.Context, contractNumber string) (*MembershipContract, error)
	Update(ctx context.Context, contract *MembershipContract) error
	ListByMemberID(ctx context.Context, memberID string) ([]*MembershipContract, error)
	ListByStatus(ctx context.Context, status types.ContractStatus, limit int) ([]*MembershipContract, error)
	// NextContractSequence returns the next value of the per-tenant yearly
	// contract number sequence.
	NextContractSequence(ctx context.Context, tenantID string, year int) (int64, error)
}
