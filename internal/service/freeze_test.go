package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

type FreezeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service FreezeService
}

func TestFreezeService(t *testing.T) {
	suite.Run(t, new(FreezeServiceSuite))
}

func (s *FreezeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewFreezeService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *FreezeServiceSuite) seedSubscription() *subscription.Subscription {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	sub := newActiveSubscription(ctx, p, 60)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))
	return sub
}

func (s *FreezeServiceSuite) grantDays(memberID string, days int) {
	_, err := s.service.GrantFreezeDays(s.GetContext(), dto.GrantFreezeDaysRequest{
		MemberID: memberID,
		Days:     days,
		Source:   types.FreezeDaysSourcePromotional,
	})
	s.NoError(err)
}

func (s *FreezeServiceSuite) TestFreezeExtendsPeriodByFullRequestedDays() {
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)
	originalEnd := sub.CurrentPeriodEnd

	resp, err := s.service.FreezeSubscription(s.GetContext(), dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeVacation,
	})
	s.NoError(err)
	s.Equal(10, resp.DaysRequested)
	s.Equal(10, resp.DaysConsumed)
	s.Equal(originalEnd, resp.OriginalEndDate)
	s.Equal(originalEnd.AddDate(0, 0, 10), resp.NewEndDate)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusFrozen, stored.Status)
	s.Equal(originalEnd.AddDate(0, 0, 10), stored.CurrentPeriodEnd)

	balance, err := s.service.GetFreezeBalance(s.GetContext(), sub.MemberID)
	s.NoError(err)
	s.Equal(20, balance.AvailableDays)
}

func (s *FreezeServiceSuite) TestFreezeConsumesAtMostTheBalance() {
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 5)
	originalEnd := sub.CurrentPeriodEnd

	resp, err := s.service.FreezeSubscription(s.GetContext(), dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeMedical,
	})
	s.NoError(err)
	s.Equal(10, resp.DaysRequested)
	s.Equal(5, resp.DaysConsumed)
	// The extension still covers the full request.
	s.Equal(originalEnd.AddDate(0, 0, 10), resp.NewEndDate)

	balance, err := s.service.GetFreezeBalance(s.GetContext(), sub.MemberID)
	s.NoError(err)
	s.Equal(0, balance.AvailableDays)
}

func (s *FreezeServiceSuite) TestFreezeClosesOrphanedRecord() {
	ctx := s.GetContext()
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)

	orphan := &freeze.FreezeHistory{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_HISTORY),
		SubscriptionID: sub.ID,
		MemberID:       sub.MemberID,
		FreezeType:     types.FreezeTypeVacation,
		StartDate:      types.ToDate(time.Now().UTC()).AddDate(0, 0, -40),
		EndDate:        types.ToDate(time.Now().UTC()).AddDate(0, 0, -10),
		DaysRequested:  30,
		DaysConsumed:   30,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().FreezeHistoryRepo.Create(ctx, orphan))

	_, err := s.service.FreezeSubscription(ctx, dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           7,
		FreezeType:     types.FreezeTypeTravel,
	})
	s.NoError(err)

	closed, err := s.GetStores().FreezeHistoryRepo.Get(ctx, orphan.ID)
	s.NoError(err)
	s.NotNil(closed.ClosedAt)
}

func (s *FreezeServiceSuite) TestUnfreezeKeepsTheExtension() {
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)
	originalEnd := sub.CurrentPeriodEnd

	frozen, err := s.service.FreezeSubscription(s.GetContext(), dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeVacation,
	})
	s.NoError(err)

	resp, err := s.service.UnfreezeSubscription(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	// Unfreezing early does not roll the period end back.
	s.Equal(originalEnd.AddDate(0, 0, 10), resp.CurrentPeriodEnd)

	closed, err := s.GetStores().FreezeHistoryRepo.Get(s.GetContext(), frozen.ID)
	s.NoError(err)
	s.NotNil(closed.ClosedAt)
}

func (s *FreezeServiceSuite) TestUnfreezeRequiresFrozenSubscription() {
	sub := s.seedSubscription()

	_, err := s.service.UnfreezeSubscription(s.GetContext(), sub.ID)
	s.Error(err)
}

func (s *FreezeServiceSuite) TestProcessExpiredFreezesUnfreezesDueSubscriptions() {
	ctx := s.GetContext()
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)

	_, err := s.service.FreezeSubscription(ctx, dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeVacation,
	})
	s.NoError(err)

	// Rewind the freeze window so it reads as elapsed.
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	past := types.ToDate(time.Now().UTC()).AddDate(0, 0, -1)
	stored.FrozenUntil = &past
	s.NoError(s.GetStores().SubscriptionRepo.Update(ctx, stored))

	result, err := s.service.ProcessExpiredFreezes(ctx)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(0, result.Failed)

	after, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, after.Status)
	s.Nil(after.FrozenUntil)
}

func (s *FreezeServiceSuite) TestProcessExpiredFreezesSkipsOngoingFreezes() {
	ctx := s.GetContext()
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)

	_, err := s.service.FreezeSubscription(ctx, dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeMedical,
	})
	s.NoError(err)

	result, err := s.service.ProcessExpiredFreezes(ctx)
	s.NoError(err)
	s.Equal(0, result.Processed)
	s.Equal(0, result.Failed)

	after, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusFrozen, after.Status)
}

func (s *FreezeServiceSuite) TestProcessExpiredFreezesIsolatesFailures() {
	ctx := s.GetContext()

	// A frozen subscription with no open freeze record cannot be unfrozen by
	// the batch. It must not block the healthy one.
	p := newTestPlan(ctx, "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))
	broken := newActiveSubscription(ctx, p, 60)
	past := types.ToDate(time.Now().UTC()).AddDate(0, 0, -2)
	frozenType := types.FreezeTypeVacation
	broken.Status = types.SubscriptionStatusFrozen
	broken.FrozenUntil = &past
	broken.FreezeType = &frozenType
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, broken))

	healthy := newActiveSubscription(ctx, p, 60)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, healthy))
	s.grantDays(healthy.MemberID, 30)
	_, err := s.service.FreezeSubscription(ctx, dto.FreezeSubscriptionRequest{
		SubscriptionID: healthy.ID,
		Days:           5,
		FreezeType:     types.FreezeTypeTravel,
	})
	s.NoError(err)
	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, healthy.ID)
	s.NoError(err)
	yesterday := types.ToDate(time.Now().UTC()).AddDate(0, 0, -1)
	stored.FrozenUntil = &yesterday
	s.NoError(s.GetStores().SubscriptionRepo.Update(ctx, stored))

	result, err := s.service.ProcessExpiredFreezes(ctx)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Failed)
	s.Equal([]string{broken.ID}, result.FailedIDs)

	after, err := s.GetStores().SubscriptionRepo.Get(ctx, healthy.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, after.Status)
}

func (s *FreezeServiceSuite) TestPurchaseFreezeDays() {
	ctx := s.GetContext()
	sub := s.seedSubscription()

	pkg := &freeze.FreezePackage{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_PACKAGE),
		Name:      types.LocalizedText{En: "15 day pack", Ar: "باقة 15 يوم"},
		Days:      15,
		Price:     types.NewTaxableFee(decimal.NewFromInt(75), "SAR", decimal.NewFromInt(15)),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().FreezePackageRepo.Create(ctx, pkg))

	resp, err := s.service.PurchaseFreezeDays(ctx, dto.PurchaseFreezeDaysRequest{
		MemberID:  sub.MemberID,
		PackageID: pkg.ID,
	})
	s.NoError(err)
	s.Equal(15, resp.AvailableDays)
}

func (s *FreezeServiceSuite) TestPurchaseInactivePackageFails() {
	ctx := s.GetContext()
	sub := s.seedSubscription()

	pkg := &freeze.FreezePackage{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FREEZE_PACKAGE),
		Name:      types.LocalizedText{En: "Retired pack"},
		Days:      10,
		Price:     types.NewTaxableFee(decimal.NewFromInt(50), "SAR", decimal.Zero),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	pkg.Status = types.StatusInactive
	s.NoError(s.GetStores().FreezePackageRepo.Create(ctx, pkg))

	_, err := s.service.PurchaseFreezeDays(ctx, dto.PurchaseFreezeDaysRequest{
		MemberID:  sub.MemberID,
		PackageID: pkg.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *FreezeServiceSuite) TestFreezeBalanceForNewMemberIsEmpty() {
	resp, err := s.service.GetFreezeBalance(s.GetContext(), "member_unknown")
	s.NoError(err)
	s.Equal(0, resp.AvailableDays)
}

func (s *FreezeServiceSuite) TestFreezeHistoryIsRecorded() {
	sub := s.seedSubscription()
	s.grantDays(sub.MemberID, 30)

	_, err := s.service.FreezeSubscription(s.GetContext(), dto.FreezeSubscriptionRequest{
		SubscriptionID: sub.ID,
		Days:           10,
		FreezeType:     types.FreezeTypeVacation,
	})
	s.NoError(err)
	_, err = s.service.UnfreezeSubscription(s.GetContext(), sub.ID)
	s.NoError(err)

	history, err := s.service.GetFreezeHistory(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(history, 1)
}
