package service

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/domain/proration"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// PlanChangeService executes upgrades and downgrades between membership
// plans, with proration for immediate changes and scheduling for deferred
// ones.
type PlanChangeService interface {
	PreviewPlanChange(ctx context.Context, req dto.ChangePlanRequest) (*dto.PlanChangePreviewResponse, error)
	ChangePlan(ctx context.Context, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error)
	CancelScheduledChange(ctx context.Context, changeID string, req dto.CancelScheduledChangeRequest) (*dto.ScheduledChangeResponse, error)
	ProcessScheduledChanges(ctx context.Context) (*dto.BatchResultResponse, error)
	GetPlanChangeHistory(ctx context.Context, subscriptionID string) ([]*planchange.PlanChangeHistory, error)
	GetPendingScheduledChange(ctx context.Context, subscriptionID string) (*dto.ScheduledChangeResponse, error)
}

type planChangeService struct {
	ServiceParams
}

func NewPlanChangeService(params ServiceParams) PlanChangeService {
	return &planChangeService{
		ServiceParams: params,
	}
}

// resolveChange loads both plans and computes the proration outcome shared by
// preview and execution.
func (s *planChangeService) resolveChange(ctx context.Context, req dto.ChangePlanRequest) (*subscription.Subscription, *plan.MembershipPlan, *plan.MembershipPlan, types.PlanChangeType, proration.Result, error) {
	var zero proration.Result

	sub, err := s.SubscriptionRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, nil, nil, "", zero, err
	}
	if sub.PlanID == req.NewPlanID {
		return nil, nil, nil, "", zero, ierr.NewError("subscription is already on this plan").
			WithHint("Pick a different plan to change to").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"plan_id":         req.NewPlanID,
			}).
			Mark(ierr.ErrValidation)
	}

	currentPlan, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, nil, "", zero, err
	}
	newPlan, err := s.PlanRepo.Get(ctx, req.NewPlanID)
	if err != nil {
		return nil, nil, nil, "", zero, err
	}
	if newPlan.Status != types.StatusActive {
		return nil, nil, nil, "", zero, ierr.NewError("target plan is not active").
			WithReportableDetails(map[string]any{"plan_id": newPlan.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	currentPrice := currentPlan.RecurringTotal()
	newPrice := newPlan.RecurringTotal()

	changeType := types.PlanChangeTypeDowngrade
	isUpgrade := proration.IsUpgrade(currentPrice, newPrice)
	if isUpgrade {
		changeType = types.PlanChangeTypeUpgrade
	}

	now := time.Now().UTC()
	result := proration.Calculate(proration.Params{
		CurrentPlanPrice: currentPrice,
		NewPlanPrice:     newPrice,
		PeriodStart:      sub.CurrentPeriodStart,
		PeriodEnd:        sub.CurrentPeriodEnd,
		ChangeDate:       now,
		Mode:             proration.DetermineMode(isUpgrade, req.ProrationPreference),
	})

	return sub, currentPlan, newPlan, changeType, result, nil
}

func (s *planChangeService) PreviewPlanChange(ctx context.Context, req dto.ChangePlanRequest) (*dto.PlanChangePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, _, _, changeType, result, err := s.resolveChange(ctx, req)
	if err != nil {
		return nil, err
	}

	mode := proration.DetermineMode(changeType == types.PlanChangeTypeUpgrade, req.ProrationPreference)
	return &dto.PlanChangePreviewResponse{
		SubscriptionID: sub.ID,
		CurrentPlanID:  sub.PlanID,
		NewPlanID:      req.NewPlanID,
		ChangeType:     changeType,
		ProrationMode:  mode,
		Credit:         result.Credit,
		Charge:         result.Charge,
		Net:            result.Net,
		EffectiveDate:  result.EffectiveDate,
		Currency:       sub.Currency,
		Summary: types.LocalizedText{
			En: proration.FormatSummary(result, sub.Currency, "en"),
			Ar: proration.FormatSummary(result, sub.Currency, "ar"),
		},
	}, nil
}

func (s *planChangeService) ChangePlan(ctx context.Context, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, _, newPlan, changeType, result, err := s.resolveChange(ctx, req)
	if err != nil {
		return nil, err
	}

	// One pending change per subscription, regardless of mode. An immediate
	// change under a scheduled one would leave the stale change to fire later.
	if sub.ScheduledPlanChangeID != nil {
		return nil, ierr.NewError("subscription already has a scheduled plan change").
			WithHint("Cancel the existing scheduled change first").
			WithReportableDetails(map[string]any{
				"subscription_id":          sub.ID,
				"scheduled_plan_change_id": *sub.ScheduledPlanChangeID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	mode := proration.DetermineMode(changeType == types.PlanChangeTypeUpgrade, req.ProrationPreference)
	now := time.Now().UTC()

	if mode == types.ProrationModeEndOfPeriod {
		change := &planchange.ScheduledPlanChange{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SCHEDULED_CHANGE),
			SubscriptionID: sub.ID,
			MemberID:       sub.MemberID,
			FromPlanID:     sub.PlanID,
			ToPlanID:       newPlan.ID,
			ChangeType:     changeType,
			ProrationMode:  mode,
			Status:         types.ScheduledChangeStatusPending,
			EffectiveDate:  types.ToDate(sub.CurrentPeriodEnd),
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		if err := sub.ScheduleChange(change.ID); err != nil {
			return nil, err
		}

		err = s.DB.WithTx(ctx, func(ctx context.Context) error {
			if err := s.ScheduledChangeRepo.Create(ctx, change); err != nil {
				return err
			}
			return s.SubscriptionRepo.Update(ctx, sub)
		})
		if err != nil {
			return nil, err
		}

		s.Logger.Infow("scheduled plan change",
			"subscription_id", sub.ID,
			"change_id", change.ID,
			"change_type", changeType,
			"effective_date", change.EffectiveDate.Format(time.DateOnly))

		return &dto.PlanChangeResponse{ScheduledChange: change}, nil
	}

	history := &planchange.PlanChangeHistory{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_CHANGE_HISTORY),
		SubscriptionID: sub.ID,
		MemberID:       sub.MemberID,
		FromPlanID:     sub.PlanID,
		ToPlanID:       newPlan.ID,
		ChangeType:     changeType,
		ProrationMode:  mode,
		CreditAmount:   result.Credit,
		ChargeAmount:   result.Charge,
		NetAmount:      result.Net,
		Currency:       sub.Currency,
		EffectiveDate:  result.EffectiveDate,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := sub.ChangePlan(newPlan.ID, newPlan.RecurringTotal()); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PlanChangeHistoryRepo.Create(ctx, history); err != nil {
			return err
		}
		return s.SubscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied plan change",
		"subscription_id", sub.ID,
		"change_type", changeType,
		"proration_mode", mode,
		"net_amount", result.Net.String(),
		"time", now.Format(time.RFC3339))

	return &dto.PlanChangeResponse{History: history}, nil
}

func (s *planChangeService) CancelScheduledChange(ctx context.Context, changeID string, req dto.CancelScheduledChangeRequest) (*dto.ScheduledChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	change, err := s.ScheduledChangeRepo.Get(ctx, changeID)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.Get(ctx, change.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if err := change.Cancel(); err != nil {
		return nil, err
	}
	sub.ClearScheduledChange()

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ScheduledChangeRepo.Update(ctx, change); err != nil {
			return err
		}
		return s.SubscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled scheduled plan change",
		"change_id", change.ID,
		"subscription_id", sub.ID,
		"cancelled_by", req.CancelledBy,
		"reason", req.Reason)

	return &dto.ScheduledChangeResponse{ScheduledPlanChange: change}, nil
}

// applyScheduledChange performs one deferred change. The change was scheduled
// precisely because no proration applies at the period boundary, so the audit
// record carries zero amounts.
func (s *planChangeService) applyScheduledChange(ctx context.Context, change *planchange.ScheduledPlanChange, at time.Time) error {
	sub, err := s.SubscriptionRepo.Get(ctx, change.SubscriptionID)
	if err != nil {
		return err
	}
	newPlan, err := s.PlanRepo.Get(ctx, change.ToPlanID)
	if err != nil {
		return err
	}

	result := proration.Calculate(proration.Params{
		CurrentPlanPrice: sub.RecurringAmount,
		NewPlanPrice:     newPlan.RecurringTotal(),
		PeriodStart:      sub.CurrentPeriodStart,
		PeriodEnd:        sub.CurrentPeriodEnd,
		ChangeDate:       at,
		Mode:             types.ProrationModeEndOfPeriod,
	})

	history := &planchange.PlanChangeHistory{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_CHANGE_HISTORY),
		SubscriptionID: sub.ID,
		MemberID:       sub.MemberID,
		FromPlanID:     change.FromPlanID,
		ToPlanID:       change.ToPlanID,
		ChangeType:     change.ChangeType,
		ProrationMode:  change.ProrationMode,
		CreditAmount:   result.Credit,
		ChargeAmount:   result.Charge,
		NetAmount:      result.Net,
		Currency:       sub.Currency,
		EffectiveDate:  change.EffectiveDate,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	if err := change.MarkProcessed(at, history.ID); err != nil {
		return err
	}
	if err := sub.ChangePlan(newPlan.ID, newPlan.RecurringTotal()); err != nil {
		return err
	}
	sub.ClearScheduledChange()

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ScheduledChangeRepo.Update(ctx, change); err != nil {
			return err
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		return s.PlanChangeHistoryRepo.Create(ctx, history)
	})
}

// ProcessScheduledChanges applies every pending change that has reached its
// effective date. Item failures are logged and skipped so one bad change does
// not block the rest of the batch.
func (s *planChangeService) ProcessScheduledChanges(ctx context.Context) (*dto.BatchResultResponse, error) {
	now := time.Now().UTC()
	today := types.ToDate(now)
	result := &dto.BatchResultResponse{}

	due, err := s.ScheduledChangeRepo.ListDueForProcessing(ctx, today, s.Config.Membership.BatchSize)
	if err != nil {
		return nil, err
	}

	for _, change := range due {
		if err := s.applyScheduledChange(ctx, change, now); err != nil {
			s.Logger.Errorw("failed to apply scheduled plan change",
				"change_id", change.ID,
				"subscription_id", change.SubscriptionID,
				"error", err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, change.ID)
			continue
		}
		result.Processed++
	}

	s.Logger.Infow("processed scheduled plan changes",
		"due", len(due),
		"processed", result.Processed,
		"failed", result.Failed)

	return result, nil
}

func (s *planChangeService) GetPlanChangeHistory(ctx context.Context, subscriptionID string) ([]*planchange.PlanChangeHistory, error) {
	return s.PlanChangeHistoryRepo.ListBySubscriptionID(ctx, subscriptionID)
}

func (s *planChangeService) GetPendingScheduledChange(ctx context.Context, subscriptionID string) (*dto.ScheduledChangeResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.ScheduledPlanChangeID == nil {
		return nil, ierr.NewError("subscription has no pending plan change").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrNotFound)
	}

	change, err := s.ScheduledChangeRepo.Get(ctx, *sub.ScheduledPlanChangeID)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduledChangeResponse{ScheduledPlanChange: change}, nil
}
