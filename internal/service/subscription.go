package service

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// SubscriptionService drives the subscription lifecycle outside the contract
// and cancellation flows: billing transitions, reactivation, and usage
// tracking.
type SubscriptionService interface {
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListMemberSubscriptions(ctx context.Context, memberID string) ([]*dto.SubscriptionResponse, error)
	ListSubscriptionsByStatus(ctx context.Context, status types.SubscriptionStatus, limit int) ([]*dto.SubscriptionResponse, error)
	RenewSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ConfirmPayment(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	MarkPastDue(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	UseClass(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	UseGuestPass(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListMemberSubscriptions(ctx context.Context, memberID string) ([]*dto.SubscriptionResponse, error) {
	subs, err := s.SubscriptionRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		responses[i] = &dto.SubscriptionResponse{Subscription: sub}
	}
	return responses, nil
}

func (s *subscriptionService) ListSubscriptionsByStatus(ctx context.Context, status types.SubscriptionStatus, limit int) ([]*dto.SubscriptionResponse, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubscriptionRepo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		responses[i] = &dto.SubscriptionResponse{Subscription: sub}
	}
	return responses, nil
}

// RenewSubscription rolls the subscription into its next billing period and
// resets the usage counters.
func (s *subscriptionService) RenewSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	periodStart := sub.CurrentPeriodEnd
	periodEnd := periodStart.AddDate(0, p.DurationMonths, 0)
	if err := sub.Renew(periodStart, periodEnd); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("renewed subscription",
		"subscription_id", sub.ID,
		"period_start", periodStart.Format(time.DateOnly),
		"period_end", periodEnd.Format(time.DateOnly))

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ConfirmPayment(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sub.ConfirmPayment(); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) MarkPastDue(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sub.MarkPastDue(); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Warnw("marked subscription past due", "subscription_id", sub.ID)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// ReactivateSubscription restores a cancelled subscription within its
// reactivation window, opening a fresh billing period from today.
func (s *subscriptionService) ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if p.Status != types.StatusActive {
		return nil, ierr.NewError("plan is no longer offered").
			WithHint("Reactivate onto a currently offered plan instead").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"plan_id":         p.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	periodEnd := types.ToDate(now).AddDate(0, p.DurationMonths, 0)
	if err := sub.Reactivate(now, periodEnd); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("reactivated subscription",
		"subscription_id", sub.ID,
		"period_end", periodEnd.Format(time.DateOnly))

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) UseClass(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	if err := sub.UseClass(p.ClassesAllowed); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) UseGuestPass(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	if err := sub.UseGuestPass(p.GuestPassesAllowed); err != nil {
		return nil, err
	}
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}
