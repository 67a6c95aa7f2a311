package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *SubscriptionServiceSuite) TestRenewRollsPeriodAndResetsCounters() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	sub := newActiveSubscription(ctx, p, 30)
	sub.ClassesUsed = 8
	sub.GuestPassesUsed = 2
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	oldEnd := sub.CurrentPeriodEnd
	resp, err := s.service.RenewSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(oldEnd, resp.CurrentPeriodStart)
	s.Equal(oldEnd.AddDate(0, 1, 0), resp.CurrentPeriodEnd)
	s.Equal(0, resp.ClassesUsed)
	s.Equal(0, resp.GuestPassesUsed)
}

func (s *SubscriptionServiceSuite) TestPaymentTransitions() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	sub := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	pastDue, err := s.service.MarkPastDue(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, pastDue.Status)

	recovered, err := s.service.ConfirmPayment(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, recovered.Status)
}

func (s *SubscriptionServiceSuite) TestReactivateWithinWindow() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	sub := newActiveSubscription(ctx, p, 120)
	now := time.Now().UTC()
	endDate := types.ToDate(now).AddDate(0, 0, -10)
	deadline := endDate.AddDate(0, 0, 90)
	sub.Status = types.SubscriptionStatusCancelled
	sub.EndDate = &endDate
	sub.ReactivationDeadline = &deadline
	sub.ClassesUsed = 5
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	resp, err := s.service.ReactivateSubscription(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal(types.ToDate(now).AddDate(0, 1, 0), resp.CurrentPeriodEnd)
	s.Equal(0, resp.ClassesUsed)
	s.Nil(resp.EndDate)
}

func (s *SubscriptionServiceSuite) TestReactivateAfterDeadlineFails() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	sub := newActiveSubscription(ctx, p, 300)
	endDate := types.ToDate(time.Now().UTC()).AddDate(0, 0, -120)
	deadline := endDate.AddDate(0, 0, 90)
	sub.Status = types.SubscriptionStatusCancelled
	sub.EndDate = &endDate
	sub.ReactivationDeadline = &deadline
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	_, err := s.service.ReactivateSubscription(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsExpired(err))
}

func (s *SubscriptionServiceSuite) TestUseClassHonorsPlanAllowance() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "TwoClasses", 200)
	two := 2
	p.ClassesAllowed = &two
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	sub := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	for i := 0; i < 2; i++ {
		_, err := s.service.UseClass(ctx, sub.ID)
		s.NoError(err)
	}
	_, err := s.service.UseClass(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestUseGuestPassHonorsPlanAllowance() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	sub := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	for i := 0; i < 2; i++ {
		_, err := s.service.UseGuestPass(ctx, sub.ID)
		s.NoError(err)
	}
	_, err := s.service.UseGuestPass(ctx, sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestListMemberSubscriptions() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	sub := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))
	other := newActiveSubscription(ctx, p, 10)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, other))

	listed, err := s.service.ListMemberSubscriptions(ctx, sub.MemberID)
	s.NoError(err)
	s.Len(listed, 1)
	s.Equal(sub.ID, listed[0].ID)
}

func (s *SubscriptionServiceSuite) TestListSubscriptionsByStatus() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	active := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, active))
	pastDue := newActiveSubscription(ctx, p, 30)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, pastDue))
	_, err := s.service.MarkPastDue(ctx, pastDue.ID)
	s.NoError(err)

	listed, err := s.service.ListSubscriptionsByStatus(ctx, types.SubscriptionStatusPastDue, 10)
	s.NoError(err)
	s.Len(listed, 1)
	s.Equal(pastDue.ID, listed[0].ID)

	_, err = s.service.ListSubscriptionsByStatus(ctx, "bogus", 10)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
