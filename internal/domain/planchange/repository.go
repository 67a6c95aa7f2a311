package planchange

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, change *ScheduledPlanChange) error
	Get(ctx context.Context, id string) (*ScheduledPlanChange, error)
	Update(ctx context.Context, change *ScheduledPlanChange) error
	// ListDueForProcessing returns pending changes whose effective date is on
	// or before the given date.
	ListDueForProcessing(ctx context.Context, date time.Time, limit int) ([]*ScheduledPlanChange, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, history *PlanChangeHistory) error
	ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*PlanChangeHistory, error)
}
