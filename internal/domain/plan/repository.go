package plan

import "context"

type Repository interface {
	Create(ctx context.Context, plan *MembershipPlan) error
	Get(ctx context.Context, id string) (*MembershipPlan, error)
	Update(ctx context.Context, plan *MembershipPlan) error
	List(ctx context.Context) ([]*MembershipPlan, error)
	// ListCheaperThan returns active plans whose recurring total is strictly
	// below the given plan's, ordered most expensive first.
	ListCheaperThan(ctx context.Context, planID string) ([]*MembershipPlan, error)
}
