package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

type PlanChangeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanChangeService
}

func TestPlanChangeService(t *testing.T) {
	suite.Run(t, new(PlanChangeServiceSuite))
}

func (s *PlanChangeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanChangeService(newTestServiceParams(&s.BaseServiceTestSuite))
}

// seedSubscription creates plans at 200 and 300 SAR and an active subscription
// on the first, 20 days into a 30-day billing period.
func (s *PlanChangeServiceSuite) seedSubscription() (*subscription.Subscription, *plan.MembershipPlan, *plan.MembershipPlan) {
	ctx := s.GetContext()
	basic := newTestPlan(ctx, "Basic", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, basic))
	premium := newTestPlan(ctx, "Premium", 300)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, premium))

	today := types.ToDate(time.Now().UTC())
	sub := newActiveSubscription(ctx, basic, 100)
	sub.CurrentPeriodStart = today.AddDate(0, 0, -20)
	sub.CurrentPeriodEnd = today.AddDate(0, 0, 10)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))
	return sub, basic, premium
}

func (s *PlanChangeServiceSuite) TestUpgradeProratesImmediately() {
	sub, _, premium := s.seedSubscription()

	resp, err := s.service.ChangePlan(s.GetContext(), dto.ChangePlanRequest{
		SubscriptionID: sub.ID,
		NewPlanID:      premium.ID,
	})
	s.NoError(err)
	s.Nil(resp.ScheduledChange)
	s.Require().NotNil(resp.History)

	// 10 of 30 days remain: credit 200/30*10, charge 300/30*10.
	s.Equal("66.67", resp.History.CreditAmount.StringFixed(2))
	s.Equal("100.00", resp.History.ChargeAmount.StringFixed(2))
	s.Equal("33.33", resp.History.NetAmount.StringFixed(2))
	s.Equal(types.PlanChangeTypeUpgrade, resp.History.ChangeType)
	s.Equal(types.ProrationModeProrateImmediately, resp.History.ProrationMode)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(premium.ID, stored.PlanID)
	s.Equal("300", stored.RecurringAmount.String())
}

func (s *PlanChangeServiceSuite) TestDowngradeIsScheduledForPeriodEnd() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{
		SubscriptionID: sub.ID,
		NewPlanID:      basic.ID,
	})
	s.NoError(err)
	s.Nil(resp.History)
	s.Require().NotNil(resp.ScheduledChange)
	s.Equal(types.PlanChangeTypeDowngrade, resp.ScheduledChange.ChangeType)
	s.Equal(types.ScheduledChangeStatusPending, resp.ScheduledChange.Status)
	s.Equal(types.ToDate(sub.CurrentPeriodEnd), resp.ScheduledChange.EffectiveDate)

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(premium.ID, stored.PlanID)
	s.Equal(&resp.ScheduledChange.ID, stored.ScheduledPlanChangeID)
}

func (s *PlanChangeServiceSuite) TestDowngradePreferenceCannotForceImmediate() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{
		SubscriptionID:      sub.ID,
		NewPlanID:           basic.ID,
		ProrationPreference: lo.ToPtr(types.ProrationModeProrateImmediately),
	})
	s.NoError(err)
	s.Nil(resp.History)
	s.Require().NotNil(resp.ScheduledChange)
	s.Equal(types.ProrationModeEndOfPeriod, resp.ScheduledChange.ProrationMode)
}

func (s *PlanChangeServiceSuite) TestSamePlanRejected() {
	sub, basic, _ := s.seedSubscription()

	_, err := s.service.ChangePlan(s.GetContext(), dto.ChangePlanRequest{
		SubscriptionID: sub.ID,
		NewPlanID:      basic.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanChangeServiceSuite) TestSecondScheduledChangeRejected() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	_, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)

	_, err = s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PlanChangeServiceSuite) TestImmediateChangeRejectedWhileChangeIsScheduled() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	// Schedule a downgrade, then attempt an immediate upgrade back.
	scheduled, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)
	s.Require().NotNil(scheduled.ScheduledChange)

	deluxe := newTestPlan(ctx, "Deluxe", 400)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, deluxe))

	_, err = s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: deluxe.ID})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(premium.ID, stored.PlanID)
	s.Equal(&scheduled.ScheduledChange.ID, stored.ScheduledPlanChangeID)

	pending, err := s.GetStores().ScheduledChangeRepo.Get(ctx, scheduled.ScheduledChange.ID)
	s.NoError(err)
	s.Equal(types.ScheduledChangeStatusPending, pending.Status)
}

func (s *PlanChangeServiceSuite) TestPreviewUpgrade() {
	sub, _, premium := s.seedSubscription()

	preview, err := s.service.PreviewPlanChange(s.GetContext(), dto.ChangePlanRequest{
		SubscriptionID: sub.ID,
		NewPlanID:      premium.ID,
	})
	s.NoError(err)
	s.Equal(types.PlanChangeTypeUpgrade, preview.ChangeType)
	s.Equal("33.33", preview.Net.StringFixed(2))
	s.Contains(preview.Summary.En, "33.33 SAR")
	s.NotEmpty(preview.Summary.Ar)

	// Previewing persists nothing.
	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.NotEqual(premium.ID, stored.PlanID)
}

func (s *PlanChangeServiceSuite) TestCancelScheduledChange() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)

	cancelled, err := s.service.CancelScheduledChange(ctx, resp.ScheduledChange.ID, dto.CancelScheduledChangeRequest{
		Reason:      "member changed their mind",
		CancelledBy: "staff-1",
	})
	s.NoError(err)
	s.Equal(types.ScheduledChangeStatusCancelled, cancelled.Status)

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Nil(stored.ScheduledPlanChangeID)
}

func (s *PlanChangeServiceSuite) TestProcessScheduledChangesAppliesDueItems() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)

	// Pull the effective date into the past so the processor finds it due.
	change := resp.ScheduledChange
	change.EffectiveDate = types.ToDate(time.Now().UTC()).AddDate(0, 0, -1)
	s.NoError(s.GetStores().ScheduledChangeRepo.Update(ctx, change))

	result, err := s.service.ProcessScheduledChanges(ctx)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(0, result.Failed)

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(basic.ID, stored.PlanID)
	s.Equal("200", stored.RecurringAmount.String())
	s.Nil(stored.ScheduledPlanChangeID)

	processed, err := s.GetStores().ScheduledChangeRepo.Get(ctx, change.ID)
	s.NoError(err)
	s.Equal(types.ScheduledChangeStatusProcessed, processed.Status)

	history, err := s.service.GetPlanChangeHistory(ctx, sub.ID)
	s.NoError(err)
	s.Require().Len(history, 1)
	s.True(history[0].NetAmount.IsZero())
	s.Require().NotNil(processed.PlanChangeHistoryID)
	s.Equal(history[0].ID, *processed.PlanChangeHistoryID)
}

func (s *PlanChangeServiceSuite) TestProcessScheduledChangesSkipsFailures() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)

	yesterday := types.ToDate(time.Now().UTC()).AddDate(0, 0, -1)
	change := resp.ScheduledChange
	change.EffectiveDate = yesterday
	s.NoError(s.GetStores().ScheduledChangeRepo.Update(ctx, change))

	// A due change whose subscription is gone fails and gets skipped.
	broken := *change
	broken.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SCHEDULED_CHANGE)
	broken.SubscriptionID = "subs_missing"
	s.NoError(s.GetStores().ScheduledChangeRepo.Create(ctx, &broken))

	result, err := s.service.ProcessScheduledChanges(ctx)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Failed)
	s.Equal([]string{broken.ID}, result.FailedIDs)
}

func (s *PlanChangeServiceSuite) TestGetPendingScheduledChange() {
	ctx := s.GetContext()
	_, basic, premium := s.seedSubscription()

	sub := newActiveSubscription(ctx, premium, 100)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	_, err := s.service.GetPendingScheduledChange(ctx, sub.ID)
	s.True(ierr.IsNotFound(err))

	resp, err := s.service.ChangePlan(ctx, dto.ChangePlanRequest{SubscriptionID: sub.ID, NewPlanID: basic.ID})
	s.NoError(err)

	pending, err := s.service.GetPendingScheduledChange(ctx, sub.ID)
	s.NoError(err)
	s.Equal(resp.ScheduledChange.ID, pending.ID)
}
