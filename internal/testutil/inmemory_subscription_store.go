package testutil

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return s.InMemoryStore.Update(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) ListByMemberID(ctx context.Context, memberID string) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub.MemberID == memberID
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}, 0)
}

func (s *InMemorySubscriptionStore) ListByStatus(ctx context.Context, status types.SubscriptionStatus, limit int) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub.Status == status
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	}, limit)
}

func (s *InMemorySubscriptionStore) ListFreezesExpiringBy(ctx context.Context, date time.Time, limit int) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub.Status == types.SubscriptionStatusFrozen &&
			sub.FrozenUntil != nil &&
			!sub.FrozenUntil.After(date)
	}, func(i, j *subscription.Subscription) bool {
		return i.FrozenUntil.Before(*j.FrozenUntil)
	}, limit)
}
