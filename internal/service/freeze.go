package service

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/freeze"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// FreezeService owns the member freeze balance and the freeze/unfreeze flow on
// subscriptions.
type FreezeService interface {
	PurchaseFreezeDays(ctx context.Context, req dto.PurchaseFreezeDaysRequest) (*dto.FreezeBalanceResponse, error)
	GrantFreezeDays(ctx context.Context, req dto.GrantFreezeDaysRequest) (*dto.FreezeBalanceResponse, error)
	FreezeSubscription(ctx context.Context, req dto.FreezeSubscriptionRequest) (*dto.FreezeHistoryResponse, error)
	UnfreezeSubscription(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error)
	ProcessExpiredFreezes(ctx context.Context) (*dto.BatchResultResponse, error)
	GetFreezeBalance(ctx context.Context, memberID string) (*dto.FreezeBalanceResponse, error)
	GetFreezeHistory(ctx context.Context, subscriptionID string) ([]*dto.FreezeHistoryResponse, error)
}

type freezeService struct {
	ServiceParams
}

func NewFreezeService(params ServiceParams) FreezeService {
	return &freezeService{
		ServiceParams: params,
	}
}

// getOrCreateBalance loads the member's balance, creating an empty one on
// first use.
func (s *freezeService) getOrCreateBalance(ctx context.Context, memberID string) (*freeze.MemberFreezeBalance, bool, error) {
	balance, err := s.FreezeBalanceRepo.GetByMemberID(ctx, memberID)
	if err == nil {
		return balance, false, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, false, err
	}

	balance = &freeze.MemberFreezeBalance{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_BALANCE),
		MemberID:  memberID,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	return balance, true, nil
}

func (s *freezeService) saveBalance(ctx context.Context, balance *freeze.MemberFreezeBalance, created bool) error {
	if created {
		return s.FreezeBalanceRepo.Create(ctx, balance)
	}
	return s.FreezeBalanceRepo.Update(ctx, balance)
}

func (s *freezeService) PurchaseFreezeDays(ctx context.Context, req dto.PurchaseFreezeDaysRequest) (*dto.FreezeBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pkg, err := s.FreezePackageRepo.Get(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.Status != types.StatusActive {
		return nil, ierr.NewError("freeze package is not active").
			WithHint("Only active freeze packages can be purchased").
			WithReportableDetails(map[string]any{"package_id": pkg.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	balance, created, err := s.getOrCreateBalance(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if err := balance.Grant(pkg.Days, types.FreezeDaysSourcePurchased, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.saveBalance(ctx, balance, created); err != nil {
		return nil, err
	}

	s.Logger.Infow("purchased freeze days",
		"member_id", req.MemberID,
		"package_id", pkg.ID,
		"days", pkg.Days,
		"price", pkg.Price.GrossAmount().String())

	return &dto.FreezeBalanceResponse{
		MemberFreezeBalance: balance,
		AvailableDays:       balance.AvailableDays(),
	}, nil
}

func (s *freezeService) GrantFreezeDays(ctx context.Context, req dto.GrantFreezeDaysRequest) (*dto.FreezeBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	balance, created, err := s.getOrCreateBalance(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if err := balance.Grant(req.Days, req.Source, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.saveBalance(ctx, balance, created); err != nil {
		return nil, err
	}

	s.Logger.Infow("granted freeze days",
		"member_id", req.MemberID,
		"days", req.Days,
		"source", req.Source)

	return &dto.FreezeBalanceResponse{
		MemberFreezeBalance: balance,
		AvailableDays:       balance.AvailableDays(),
	}, nil
}

func (s *freezeService) FreezeSubscription(ctx context.Context, req dto.FreezeSubscriptionRequest) (*dto.FreezeHistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// An open freeze record alongside an ACTIVE subscription means someone
	// changed the status by hand. Recover by closing the orphan instead of
	// refusing the freeze.
	stale, err := s.FreezeHistoryRepo.FindActiveBySubscriptionID(ctx, req.SubscriptionID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if stale != nil {
		s.Logger.Warnw("closing orphaned freeze record",
			"subscription_id", req.SubscriptionID,
			"freeze_id", stale.ID)
		if err := stale.Close(now); err != nil {
			return nil, err
		}
	}

	balance, created, err := s.getOrCreateBalance(ctx, sub.MemberID)
	if err != nil {
		return nil, err
	}
	// Days beyond the balance are absorbed by the club: the member still gets
	// the full freeze.
	consumed := balance.Consume(req.Days)

	originalEnd, newEnd, err := sub.Freeze(now, req.Days, req.FreezeType)
	if err != nil {
		return nil, err
	}

	history := &freeze.FreezeHistory{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_HISTORY),
		SubscriptionID:   sub.ID,
		MemberID:         sub.MemberID,
		FreezeType:       req.FreezeType,
		Reason:           req.Reason,
		DocumentRef:      req.DocumentRef,
		StartDate:        types.ToDate(now),
		EndDate:          types.ToDate(now).AddDate(0, 0, req.Days),
		DaysRequested:    req.Days,
		DaysConsumed:     consumed,
		OriginalEndDate:  originalEnd,
		NewEndDate:       newEnd,
		ContractExtended: true,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if stale != nil {
			if err := s.FreezeHistoryRepo.Update(ctx, stale); err != nil {
				return err
			}
		}
		if err := s.saveBalance(ctx, balance, created); err != nil {
			return err
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		return s.FreezeHistoryRepo.Create(ctx, history)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("froze subscription",
		"subscription_id", sub.ID,
		"days_requested", req.Days,
		"days_consumed", consumed,
		"new_period_end", newEnd.Format(time.DateOnly))

	return &dto.FreezeHistoryResponse{FreezeHistory: history}, nil
}

func (s *freezeService) UnfreezeSubscription(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	history, err := s.FreezeHistoryRepo.FindActiveBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := sub.Unfreeze(); err != nil {
		return nil, err
	}
	if err := history.Close(now); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		return s.FreezeHistoryRepo.Update(ctx, history)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("unfroze subscription",
		"subscription_id", subscriptionID,
		"freeze_id", history.ID)

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

// ProcessExpiredFreezes unfreezes subscriptions whose freeze window has
// elapsed. A failing item is logged and skipped so one bad record cannot
// stall the rest of the batch.
func (s *freezeService) ProcessExpiredFreezes(ctx context.Context) (*dto.BatchResultResponse, error) {
	today := types.ToDate(time.Now().UTC())
	due, err := s.SubscriptionRepo.ListFreezesExpiringBy(ctx, today, s.Config.Membership.BatchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResultResponse{}
	for _, sub := range due {
		if _, err := s.UnfreezeSubscription(ctx, sub.ID); err != nil {
			s.Logger.Errorw("failed to unfreeze expired freeze",
				"subscription_id", sub.ID,
				"error", err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, sub.ID)
			continue
		}
		result.Processed++
	}

	s.Logger.Infow("processed expired freezes",
		"processed", result.Processed,
		"failed", result.Failed)
	return result, nil
}

func (s *freezeService) GetFreezeBalance(ctx context.Context, memberID string) (*dto.FreezeBalanceResponse, error) {
	balance, err := s.FreezeBalanceRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &dto.FreezeBalanceResponse{
				MemberFreezeBalance: &freeze.MemberFreezeBalance{MemberID: memberID},
				AvailableDays:       0,
			}, nil
		}
		return nil, err
	}

	return &dto.FreezeBalanceResponse{
		MemberFreezeBalance: balance,
		AvailableDays:       balance.AvailableDays(),
	}, nil
}

func (s *freezeService) GetFreezeHistory(ctx context.Context, subscriptionID string) ([]*dto.FreezeHistoryResponse, error) {
	records, err := s.FreezeHistoryRepo.ListBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.FreezeHistoryResponse, len(records))
	for i, h := range records {
		responses[i] = &dto.FreezeHistoryResponse{FreezeHistory: h}
	}
	return responses, nil
}
