package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/subscription"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:                s.GetLogger(),
		Config:                s.GetConfig(),
		DB:                    s.GetDB(),
		PlanRepo:              stores.PlanRepo,
		ContractRepo:          stores.ContractRepo,
		SubscriptionRepo:      stores.SubscriptionRepo,
		CancellationRepo:      stores.CancellationRepo,
		RetentionOfferRepo:    stores.RetentionOfferRepo,
		ExitSurveyRepo:        stores.ExitSurveyRepo,
		ScheduledChangeRepo:   stores.ScheduledChangeRepo,
		PlanChangeHistoryRepo: stores.PlanChangeHistoryRepo,
		FreezeBalanceRepo:     stores.FreezeBalanceRepo,
		FreezeHistoryRepo:     stores.FreezeHistoryRepo,
		FreezePackageRepo:     stores.FreezePackageRepo,
	}
}

// newTestPlan builds a monthly plan priced at the given recurring membership
// fee. Tax rates are zero so gross amounts equal net amounts in assertions.
func newTestPlan(ctx context.Context, name string, membershipFee int64) *plan.MembershipPlan {
	return &plan.MembershipPlan{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:               types.LocalizedText{En: name, Ar: name},
		MembershipFee:      types.NewTaxableFee(decimal.NewFromInt(membershipFee), "SAR", decimal.Zero),
		AdminFee:           types.NewTaxableFee(decimal.Zero, "SAR", decimal.Zero),
		JoinFee:            types.NewTaxableFee(decimal.NewFromInt(150), "SAR", decimal.Zero),
		DurationMonths:     1,
		FreezeDaysAllowed:  30,
		ClassesAllowed:     lo.ToPtr(12),
		GuestPassesAllowed: 2,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

// newActiveSubscription builds an active subscription whose start date lies
// tenureDays in the past, with the current billing period opened today.
func newActiveSubscription(ctx context.Context, p *plan.MembershipPlan, tenureDays int) *subscription.Subscription {
	today := types.ToDate(time.Now().UTC())
	return &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		MemberID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MEMBER),
		PlanID:             p.ID,
		Status:             types.SubscriptionStatusActive,
		StartDate:          today.AddDate(0, 0, -tenureDays),
		CurrentPeriodStart: today,
		CurrentPeriodEnd:   today.AddDate(0, p.DurationMonths, 0),
		RecurringAmount:    p.RecurringTotal(),
		Currency:           "SAR",
		AutoRenew:          true,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}
