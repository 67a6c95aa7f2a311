package testutil

import (
	"context"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.MembershipPlan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.MembershipPlan](),
	}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.MembershipPlan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.MembershipPlan, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.MembershipPlan) error {
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.MembershipPlan, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, p *plan.MembershipPlan) bool {
		return p.TenantID == types.GetTenantID(ctx)
	}, func(i, j *plan.MembershipPlan) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}, 0)
}

func (s *InMemoryPlanStore) ListCheaperThan(ctx context.Context, planID string) ([]*plan.MembershipPlan, error) {
	current, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	return s.InMemoryStore.List(ctx, func(ctx context.Context, p *plan.MembershipPlan) bool {
		return p.ID != current.ID &&
			p.Status == types.StatusActive &&
			p.RecurringTotal().LessThan(current.RecurringTotal())
	}, func(i, j *plan.MembershipPlan) bool {
		return i.RecurringTotal().GreaterThan(j.RecurringTotal())
	}, 0)
}
