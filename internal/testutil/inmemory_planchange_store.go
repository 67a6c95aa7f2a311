package testutil

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/domain/planchange"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// InMemoryScheduledChangeStore implements planchange.Repository
type InMemoryScheduledChangeStore struct {
	*InMemoryStore[*planchange.ScheduledPlanChange]
}

func NewInMemoryScheduledChangeStore() *InMemoryScheduledChangeStore {
	return &InMemoryScheduledChangeStore{
		InMemoryStore: NewInMemoryStore[*planchange.ScheduledPlanChange](),
	}
}

func (s *InMemoryScheduledChangeStore) Create(ctx context.Context, change *planchange.ScheduledPlanChange) error {
	if change == nil {
		return ierr.NewError("scheduled plan change cannot be nil").Mark(ierr.ErrValidation)
	}

	// Mirrors the partial unique index on (subscription_id) where status is
	// pending.
	existing, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, c *planchange.ScheduledPlanChange) bool {
		return c.SubscriptionID == change.SubscriptionID && c.Status == types.ScheduledChangeStatusPending
	}, nil, 1)
	if len(existing) > 0 && change.Status == types.ScheduledChangeStatusPending {
		return ierr.NewError("a scheduled plan change is already pending for this subscription").
			WithReportableDetails(map[string]any{"subscription_id": change.SubscriptionID}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, change.ID, change)
}

func (s *InMemoryScheduledChangeStore) Get(ctx context.Context, id string) (*planchange.ScheduledPlanChange, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryScheduledChangeStore) Update(ctx context.Context, change *planchange.ScheduledPlanChange) error {
	return s.InMemoryStore.Update(ctx, change.ID, change)
}

func (s *InMemoryScheduledChangeStore) ListDueForProcessing(ctx context.Context, date time.Time, limit int) ([]*planchange.ScheduledPlanChange, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, c *planchange.ScheduledPlanChange) bool {
		return c.Status == types.ScheduledChangeStatusPending && !c.EffectiveDate.After(date)
	}, func(i, j *planchange.ScheduledPlanChange) bool {
		return i.EffectiveDate.Before(j.EffectiveDate)
	}, limit)
}

// InMemoryPlanChangeHistoryStore implements planchange.HistoryRepository
type InMemoryPlanChangeHistoryStore struct {
	*InMemoryStore[*planchange.PlanChangeHistory]
}

func NewInMemoryPlanChangeHistoryStore() *InMemoryPlanChangeHistoryStore {
	return &InMemoryPlanChangeHistoryStore{
		InMemoryStore: NewInMemoryStore[*planchange.PlanChangeHistory](),
	}
}

func (s *InMemoryPlanChangeHistoryStore) Create(ctx context.Context, history *planchange.PlanChangeHistory) error {
	if history == nil {
		return ierr.NewError("plan change history cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, history.ID, history)
}

func (s *InMemoryPlanChangeHistoryStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*planchange.PlanChangeHistory, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, h *planchange.PlanChangeHistory) bool {
		return h.SubscriptionID == subscriptionID
	}, func(i, j *planchange.PlanChangeHistory) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}, 0)
}
