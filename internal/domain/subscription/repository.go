package subscription

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/types"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	ListByMemberID(ctx context.Context, memberID string) ([]*Subscription, error)
	ListByStatus(ctx context.Context, status types.SubscriptionStatus, limit int) ([]*Subscription, error)
	// ListFreezesExpiringBy returns frozen subscriptions whose freeze ends on
	// or before the given date.
	ListFreezesExpiringBy(ctx context.Context, date time.Time, limit int) ([]*Subscription, error)
}
