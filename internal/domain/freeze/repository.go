package freeze

import "context"

type BalanceRepository interface {
	Create(ctx context.Context, balance *MemberFreezeBalance) error
	// GetByMemberID returns the member's balance with its entries, or a
	// not-found error when none exists.
	GetByMemberID(ctx context.Context, memberID string) (*MemberFreezeBalance, error)
	Update(ctx context.Context, balance *MemberFreezeBalance) error
}

type HistoryRepository interface {
	Create(ctx context.Context, history *FreezeHistory) error
	Get(ctx context.Context, id string) (*FreezeHistory, error)
	Update(ctx context.Context, history *FreezeHistory) error
	// FindActiveBySubscriptionID returns the open freeze record for the
	// subscription, or a not-found error when none exists.
	FindActiveBySubscriptionID(ctx context.Context, subscriptionID string) (*FreezeHistory, error)
	ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*FreezeHistory, error)
}

type PackageRepository interface {
	Create(ctx context.Context, pkg *FreezePackage) error
	Get(ctx context.Context, id string) (*FreezePackage, error)
	List(ctx context.Context) ([]*FreezePackage, error)
}
