package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// CancellationService orchestrates the retention workflow: cancellation
// requests, retention offers, exit surveys, and the scheduled completion
// batch.
type CancellationService interface {
	PreviewCancellation(ctx context.Context, subscriptionID string) (*dto.CancellationPreviewResponse, error)
	RequestCancellation(ctx context.Context, req dto.RequestCancellationRequest) (*dto.CancellationRequestResponse, error)
	AcceptRetentionOffer(ctx context.Context, offerID string) (*dto.CancellationRequestResponse, error)
	DeclineRetentionOffer(ctx context.Context, offerID string) (*dto.RetentionOfferResponse, error)
	WithdrawCancellation(ctx context.Context, requestID string, req dto.WithdrawCancellationRequest) (*dto.CancellationRequestResponse, error)
	CompleteCancellation(ctx context.Context, requestID string) (*dto.CancellationRequestResponse, error)
	ProcessCompletedCancellations(ctx context.Context) (*dto.BatchResultResponse, error)
	SubmitExitSurvey(ctx context.Context, req dto.SubmitExitSurveyRequest) (*dto.ExitSurveyResponse, error)
	WaiveTerminationFee(ctx context.Context, requestID string, req dto.WaiveTerminationFeeRequest) (*dto.CancellationRequestResponse, error)
	GetPendingCancellation(ctx context.Context, subscriptionID string) (*dto.CancellationRequestResponse, error)
	GetRetentionRate(ctx context.Context, since time.Time) (*dto.RetentionRateResponse, error)
	GetExitSurveyAnalytics(ctx context.Context) (*dto.ExitSurveyAnalyticsResponse, error)
}

type cancellationService struct {
	ServiceParams
}

func NewCancellationService(params ServiceParams) CancellationService {
	return &cancellationService{
		ServiceParams: params,
	}
}

// linkedContract loads the contract behind a subscription. A subscription
// without a contract is legal: walk-in memberships are sold without one.
func (s *cancellationService) linkedContract(ctx context.Context, subscriptionID string) (*contract.MembershipContract, error) {
	c, err := s.ContractRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// buildOfferPreviews assembles the retention offers for a cancellation
// episode: always a free freeze, a loyalty discount for long-tenured members,
// and a downgrade to the most expensive plan still cheaper than the current
// one.
func (s *cancellationService) buildOfferPreviews(ctx context.Context, sub *subscription.Subscription, now time.Time) ([]dto.RetentionOfferPreview, error) {
	cfg := s.Config.Membership

	freezeDays := cfg.FreeFreezeDays
	previews := []dto.RetentionOfferPreview{
		{
			OfferType:  types.RetentionOfferTypeFreeFreeze,
			FreezeDays: &freezeDays,
			Description: types.LocalizedText{
				En: fmt.Sprintf("Pause your membership for %d days, on us", freezeDays),
				Ar: fmt.Sprintf("أوقف اشتراكك مؤقتاً لمدة %d يوماً مجاناً", freezeDays),
			},
		},
	}

	tenureDays := types.DaysBetween(sub.StartDate, now)
	if tenureDays >= cfg.LoyaltyTenureDays {
		percent := decimal.NewFromInt(int64(cfg.LoyaltyDiscountPercent))
		months := cfg.LoyaltyDiscountMonths
		previews = append(previews, dto.RetentionOfferPreview{
			OfferType:       types.RetentionOfferTypeDiscount,
			DiscountPercent: &percent,
			DiscountMonths:  &months,
			Description: types.LocalizedText{
				En: fmt.Sprintf("%d%% off your membership for the next %d months", cfg.LoyaltyDiscountPercent, months),
				Ar: fmt.Sprintf("خصم %d%% على اشتراكك للأشهر الـ%d القادمة", cfg.LoyaltyDiscountPercent, months),
			},
		})
	}

	cheaper, err := s.PlanRepo.ListCheaperThan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if len(cheaper) > 0 {
		downgrade := cheaper[0]
		previews = append(previews, dto.RetentionOfferPreview{
			OfferType:       types.RetentionOfferTypeDowngrade,
			DowngradePlanID: &downgrade.ID,
			Description: types.LocalizedText{
				En: fmt.Sprintf("Switch to the %s plan at %s %s per period", downgrade.Name.Get("en"), downgrade.RecurringTotal().StringFixed(types.MoneyPrecision), downgrade.MembershipFee.Currency),
				Ar: fmt.Sprintf("انتقل إلى خطة %s بسعر %s %s لكل فترة", downgrade.Name.Get("ar"), downgrade.RecurringTotal().StringFixed(types.MoneyPrecision), downgrade.MembershipFee.Currency),
			},
		})
	}

	return previews, nil
}

func (s *cancellationService) PreviewCancellation(ctx context.Context, subscriptionID string) (*dto.CancellationPreviewResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	c, err := s.linkedContract(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	preview := &dto.CancellationPreviewResponse{
		SubscriptionID: subscriptionID,
		TerminationFee: decimal.Zero,
		RefundAmount:   decimal.Zero,
		Currency:       sub.Currency,
		EffectiveDate:  types.ToDate(now).AddDate(0, 0, s.Config.Membership.DefaultNoticePeriodDays),
	}

	if c != nil {
		preview.WithinCoolingOff = c.IsWithinCoolingOff(now)
		preview.CoolingOffDaysRemaining = c.CoolingOffDaysRemaining(now)
		preview.WithinCommitment = c.IsWithinCommitment(now)

		if preview.WithinCoolingOff {
			preview.EffectiveDate = types.ToDate(now)
			preview.RefundAmount = c.CoolingOffRefund()
		} else {
			noticeEnd := types.ToDate(now).AddDate(0, 0, c.NoticePeriodDays)
			preview.NoticePeriodEndDate = &noticeEnd
			preview.EffectiveDate = noticeEnd
			if c.CommitmentEndDate != nil && types.ToDate(*c.CommitmentEndDate).After(noticeEnd) {
				preview.EffectiveDate = types.ToDate(*c.CommitmentEndDate)
			}
			preview.TerminationFee = c.CalculateEarlyTerminationFee(now)
		}
	}

	if !preview.WithinCoolingOff {
		offers, err := s.buildOfferPreviews(ctx, sub, now)
		if err != nil {
			return nil, err
		}
		preview.Offers = offers
	}

	return preview, nil
}

func (s *cancellationService) RequestCancellation(ctx context.Context, req dto.RequestCancellationRequest) (*dto.CancellationRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	// Duplicate episode guard, backed by a partial unique index at the
	// storage layer.
	if existing, err := s.CancellationRepo.FindPendingBySubscriptionID(ctx, req.SubscriptionID); err == nil {
		return nil, ierr.NewError("a cancellation request is already pending for this subscription").
			WithHint("Resolve the existing cancellation request first").
			WithReportableDetails(map[string]any{
				"subscription_id": req.SubscriptionID,
				"request_id":      existing.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	c, err := s.linkedContract(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request := &cancellation.CancellationRequest{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CANCELLATION_REQUEST),
		MemberID:       sub.MemberID,
		SubscriptionID: sub.ID,
		Status:         types.CancellationRequestStatusPending,
		ReasonCategory: req.ReasonCategory,
		ReasonDetails:  req.ReasonDetails,
		RequestedAt:    now,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if c != nil {
		request.ContractID = c.ID
	}

	reason := string(req.ReasonCategory)
	if req.ReasonDetails != nil {
		reason = *req.ReasonDetails
	}

	if c != nil && c.IsWithinCoolingOff(now) {
		// Cooling-off: immediate, fee-free, no retention offers.
		if err := c.CancelWithinCoolingOff(now, reason); err != nil {
			return nil, err
		}
		if err := sub.CancelImmediately(now); err != nil {
			return nil, err
		}

		request.WithinCoolingOff = true
		request.EffectiveDate = types.ToDate(now)
		request.EarlyTerminationFee = decimal.Zero
		request.Status = types.CancellationRequestStatusCompleted
		request.ResolvedAt = &now

		err = s.DB.WithTx(ctx, func(ctx context.Context) error {
			if err := s.ContractRepo.Update(ctx, c); err != nil {
				return err
			}
			if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
				return err
			}
			return s.CancellationRepo.Create(ctx, request)
		})
		if err != nil {
			return nil, err
		}

		s.Logger.Infow("cancelled within cooling-off",
			"subscription_id", sub.ID,
			"request_id", request.ID,
			"refund_amount", c.CoolingOffRefund().String())

		return &dto.CancellationRequestResponse{CancellationRequest: request}, nil
	}

	// Standard path: notice period plus retention offers.
	noticeDays := s.Config.Membership.DefaultNoticePeriodDays
	if c != nil {
		noticeDays = c.NoticePeriodDays
	}
	noticeEnd := types.ToDate(now).AddDate(0, 0, noticeDays)

	effective := noticeEnd
	fee := decimal.Zero
	if c != nil {
		fee = c.CalculateEarlyTerminationFee(now)
		effective, err = c.RequestCancellation(now, reason)
		if err != nil {
			return nil, err
		}
	}

	request.EffectiveDate = effective
	request.EarlyTerminationFee = fee
	if err := request.MarkInNoticePeriod(noticeEnd); err != nil {
		return nil, err
	}
	if err := sub.RequestCancellation(now, effective); err != nil {
		return nil, err
	}

	previews, err := s.buildOfferPreviews(ctx, sub, now)
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(time.Duration(s.Config.Membership.OfferExpiryHours) * time.Hour)
	offers := make([]*cancellation.RetentionOffer, len(previews))
	for i, p := range previews {
		offers[i] = &cancellation.RetentionOffer{
			ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RETENTION_OFFER),
			CancellationRequestID: request.ID,
			SubscriptionID:        sub.ID,
			MemberID:              sub.MemberID,
			OfferType:             p.OfferType,
			Status:                types.RetentionOfferStatusPending,
			Description:           p.Description,
			FreezeDays:            p.FreezeDays,
			DiscountPercent:       p.DiscountPercent,
			DiscountMonths:        p.DiscountMonths,
			DowngradePlanID:       p.DowngradePlanID,
			ExpiresAt:             expiresAt,
			BaseModel:             types.GetDefaultBaseModel(ctx),
		}
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.CancellationRepo.Create(ctx, request); err != nil {
			return err
		}
		if c != nil {
			if err := s.ContractRepo.Update(ctx, c); err != nil {
				return err
			}
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		for _, offer := range offers {
			if err := s.RetentionOfferRepo.Create(ctx, offer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created cancellation request",
		"subscription_id", sub.ID,
		"request_id", request.ID,
		"effective_date", effective.Format(time.DateOnly),
		"termination_fee", fee.String(),
		"offers", len(offers))

	return &dto.CancellationRequestResponse{
		CancellationRequest: request,
		Offers:              offers,
	}, nil
}

func (s *cancellationService) AcceptRetentionOffer(ctx context.Context, offerID string) (*dto.CancellationRequestResponse, error) {
	offer, err := s.RetentionOfferRepo.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := offer.Accept(now); err != nil {
		// An offer found expired on acceptance is still persisted as such.
		if offer.Status == types.RetentionOfferStatusExpired {
			_ = s.RetentionOfferRepo.Update(ctx, offer)
		}
		return nil, err
	}

	request, err := s.CancellationRepo.Get(ctx, offer.CancellationRequestID)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.Get(ctx, offer.SubscriptionID)
	if err != nil {
		return nil, err
	}
	c, err := s.linkedContract(ctx, offer.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if err := request.MarkSaved(now, offer.ID); err != nil {
		return nil, err
	}
	if err := sub.WithdrawCancellation(); err != nil {
		return nil, err
	}
	if c != nil && c.Status == types.ContractStatusInNoticePeriod {
		if err := c.WithdrawCancellationRequest(); err != nil {
			return nil, err
		}
	}

	// The free-freeze benefit is applied directly; discount and downgrade
	// benefits are delegated to billing and the plan change flow.
	var balanceUpdate func(ctx context.Context) error
	if offer.OfferType == types.RetentionOfferTypeFreeFreeze && offer.FreezeDays != nil {
		balance, created, err := s.freezeBalanceFor(ctx, sub.MemberID)
		if err != nil {
			return nil, err
		}
		if err := balance.Grant(*offer.FreezeDays, types.FreezeDaysSourceRetention, now); err != nil {
			return nil, err
		}
		balanceUpdate = func(ctx context.Context) error {
			if created {
				return s.FreezeBalanceRepo.Create(ctx, balance)
			}
			return s.FreezeBalanceRepo.Update(ctx, balance)
		}
	}

	siblings, err := s.RetentionOfferRepo.ListPendingBySubscriptionID(ctx, offer.SubscriptionID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.RetentionOfferRepo.Update(ctx, offer); err != nil {
			return err
		}
		if err := s.CancellationRepo.Update(ctx, request); err != nil {
			return err
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		if c != nil {
			if err := s.ContractRepo.Update(ctx, c); err != nil {
				return err
			}
		}
		if balanceUpdate != nil {
			if err := balanceUpdate(ctx); err != nil {
				return err
			}
		}
		for _, sibling := range siblings {
			if sibling.ID == offer.ID {
				continue
			}
			if err := sibling.Decline(now); err != nil {
				return err
			}
			if err := s.RetentionOfferRepo.Update(ctx, sibling); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("accepted retention offer",
		"offer_id", offer.ID,
		"offer_type", offer.OfferType,
		"request_id", request.ID,
		"subscription_id", sub.ID)

	return &dto.CancellationRequestResponse{CancellationRequest: request}, nil
}

func (s *cancellationService) freezeBalanceFor(ctx context.Context, memberID string) (*freeze.MemberFreezeBalance, bool, error) {
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

func (s *cancellationService) DeclineRetentionOffer(ctx context.Context, offerID string) (*dto.RetentionOfferResponse, error) {
	offer, err := s.RetentionOfferRepo.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := offer.Decline(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.RetentionOfferRepo.Update(ctx, offer); err != nil {
		return nil, err
	}

	return &dto.RetentionOfferResponse{RetentionOffer: offer}, nil
}

func (s *cancellationService) WithdrawCancellation(ctx context.Context, requestID string, req dto.WithdrawCancellationRequest) (*dto.CancellationRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	request, err := s.CancellationRepo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.Get(ctx, request.SubscriptionID)
	if err != nil {
		return nil, err
	}
	c, err := s.linkedContract(ctx, request.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := request.MarkWithdrawn(now); err != nil {
		return nil, err
	}
	if err := sub.WithdrawCancellation(); err != nil {
		return nil, err
	}
	if c != nil && c.Status == types.ContractStatusInNoticePeriod {
		if err := c.WithdrawCancellationRequest(); err != nil {
			return nil, err
		}
	}

	offers, err := s.RetentionOfferRepo.ListPendingBySubscriptionID(ctx, request.SubscriptionID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.CancellationRepo.Update(ctx, request); err != nil {
			return err
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		if c != nil {
			if err := s.ContractRepo.Update(ctx, c); err != nil {
				return err
			}
		}
		for _, offer := range offers {
			if err := offer.Expire(); err != nil {
				return err
			}
			if err := s.RetentionOfferRepo.Update(ctx, offer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("withdrew cancellation request",
		"request_id", request.ID,
		"subscription_id", sub.ID,
		"reason", req.Reason)

	return &dto.CancellationRequestResponse{CancellationRequest: request}, nil
}

func (s *cancellationService) CompleteCancellation(ctx context.Context, requestID string) (*dto.CancellationRequestResponse, error) {
	request, err := s.CancellationRepo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != types.CancellationRequestStatusInNoticePeriod {
		return nil, ierr.NewError("cancellation request is not in its notice period").
			WithReportableDetails(map[string]any{
				"request_id": request.ID,
				"status":     request.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	sub, err := s.SubscriptionRepo.Get(ctx, request.SubscriptionID)
	if err != nil {
		return nil, err
	}
	c, err := s.linkedContract(ctx, request.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := request.MarkCompleted(now); err != nil {
		return nil, err
	}
	if err := sub.CompleteCancellation(now, s.Config.Membership.ReactivationWindowDays); err != nil {
		return nil, err
	}
	if c != nil && c.Status == types.ContractStatusInNoticePeriod {
		if err := c.CompleteCancellation(now); err != nil {
			return nil, err
		}
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.CancellationRepo.Update(ctx, request); err != nil {
			return err
		}
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		if c != nil {
			return s.ContractRepo.Update(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("completed cancellation",
		"request_id", request.ID,
		"subscription_id", sub.ID)

	return &dto.CancellationRequestResponse{CancellationRequest: request}, nil
}

// ProcessCompletedCancellations finalizes every request whose effective date
// has passed. Item failures are logged and skipped; the item is naturally
// retried on the next run because its due-date condition still holds.
func (s *cancellationService) ProcessCompletedCancellations(ctx context.Context) (*dto.BatchResultResponse, error) {
	today := types.ToDate(time.Now().UTC())
	result := &dto.BatchResultResponse{}

	due, err := s.CancellationRepo.ListDueForCompletion(ctx, today, s.Config.Membership.BatchSize)
	if err != nil {
		return nil, err
	}

	for _, request := range due {
		if _, err := s.CompleteCancellation(ctx, request.ID); err != nil {
			s.Logger.Errorw("failed to complete due cancellation",
				"request_id", request.ID,
				"error", err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, request.ID)
			continue
		}
		result.Processed++
	}

	s.Logger.Infow("processed due cancellations",
		"due", len(due),
		"processed", result.Processed,
		"failed", result.Failed)

	return result, nil
}

func (s *cancellationService) SubmitExitSurvey(ctx context.Context, req dto.SubmitExitSurveyRequest) (*dto.ExitSurveyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	survey := &cancellation.ExitSurvey{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EXIT_SURVEY),
		SubscriptionID:  sub.ID,
		MemberID:        sub.MemberID,
		Rating:          req.Rating,
		WouldRecommend:  req.WouldRecommend,
		Feedback:        req.Feedback,
		ImprovementArea: req.ImprovementArea,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}

	pending, err := s.CancellationRepo.FindPendingBySubscriptionID(ctx, req.SubscriptionID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if pending != nil {
		survey.CancellationRequestID = &pending.ID
		pending.ExitSurveyID = &survey.ID
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ExitSurveyRepo.Create(ctx, survey); err != nil {
			return err
		}
		if pending != nil {
			return s.CancellationRepo.Update(ctx, pending)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.ExitSurveyResponse{ExitSurvey: survey}, nil
}

func (s *cancellationService) WaiveTerminationFee(ctx context.Context, requestID string, req dto.WaiveTerminationFeeRequest) (*dto.CancellationRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	request, err := s.CancellationRepo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := request.WaiveFee(req.StaffID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.CancellationRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.Logger.Infow("waived termination fee",
		"request_id", request.ID,
		"waived_by", req.StaffID)

	return &dto.CancellationRequestResponse{CancellationRequest: request}, nil
}

func (s *cancellationService) GetPendingCancellation(ctx context.Context, subscriptionID string) (*dto.CancellationRequestResponse, error) {
	request, err := s.CancellationRepo.FindPendingBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	offers, err := s.RetentionOfferRepo.ListByRequestID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	return &dto.CancellationRequestResponse{
		CancellationRequest: request,
		Offers:              offers,
	}, nil
}

func (s *cancellationService) GetRetentionRate(ctx context.Context, since time.Time) (*dto.RetentionRateResponse, error) {
	total, retained, err := s.CancellationRepo.CountResolvedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	rate := decimal.Zero
	if total > 0 {
		rate = decimal.NewFromInt(retained).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(types.MoneyPrecision)
	}

	return &dto.RetentionRateResponse{
		Since:         since,
		TotalResolved: total,
		TotalRetained: retained,
		RetentionRate: rate,
	}, nil
}

func (s *cancellationService) GetExitSurveyAnalytics(ctx context.Context) (*dto.ExitSurveyAnalyticsResponse, error) {
	surveys, err := s.ExitSurveyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ExitSurveyAnalyticsResponse{
		TotalSurveys:     int64(len(surveys)),
		AverageRating:    decimal.Zero,
		RecommendPercent: decimal.Zero,
	}
	if len(surveys) == 0 {
		return resp, nil
	}

	var ratingSum, recommends int64
	for _, survey := range surveys {
		ratingSum += int64(survey.Rating)
		if survey.WouldRecommend {
			recommends++
		}
	}

	count := decimal.NewFromInt(int64(len(surveys)))
	resp.AverageRating = decimal.NewFromInt(ratingSum).Div(count).Round(types.MoneyPrecision)
	resp.RecommendPercent = decimal.NewFromInt(recommends).
		Div(count).
		Mul(decimal.NewFromInt(100)).
		Round(types.MoneyPrecision)
	return resp, nil
}
