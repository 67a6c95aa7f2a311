package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

type CancellationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CancellationService
}

func TestCancellationService(t *testing.T) {
	suite.Run(t, new(CancellationServiceSuite))
}

func (s *CancellationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCancellationService(newTestServiceParams(&s.BaseServiceTestSuite))
}

// seedMembership creates an active subscription tenureDays into its contract,
// alongside a cheaper plan so a downgrade offer is available. The contract
// carries a 12-month commitment and a remaining-months termination fee.
func (s *CancellationServiceSuite) seedMembership(tenureDays int) (*subscription.Subscription, *contract.MembershipContract) {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Premium", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	cheaper := newTestPlan(ctx, "Basic", 150)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, cheaper))

	sub := newActiveSubscription(ctx, p, tenureDays)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))

	start := sub.StartDate
	commitmentEnd := start.AddDate(0, 12, 0)
	signedAt := start
	c := &contract.MembershipContract{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONTRACT),
		ContractNumber:      contract.FormatContractNumber("LYQ", start.Year(), 1),
		MemberID:            sub.MemberID,
		PlanID:              p.ID,
		SubscriptionID:      sub.ID,
		ContractType:        types.ContractTypeFixedTerm,
		ContractTerm:        types.ContractTermTwelveMonths,
		Status:              types.ContractStatusActive,
		StartDate:           start,
		EndDate:             &commitmentEnd,
		SignedAt:            &signedAt,
		CoolingOffEndDate:   start.AddDate(0, 0, 7),
		CommitmentMonths:    12,
		CommitmentEndDate:   &commitmentEnd,
		NoticePeriodDays:    30,
		LockedMembershipFee: p.MembershipFee,
		LockedAdminFee:      p.AdminFee,
		LockedJoinFee:       p.JoinFee,
		Currency:            "SAR",
		TerminationFeeType:  types.TerminationFeeTypeRemainingMonths,
		AutoRenew:           true,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ContractRepo.Create(ctx, c))
	return sub, c
}

func (s *CancellationServiceSuite) requestCancellation(sub *subscription.Subscription) *dto.CancellationRequestResponse {
	resp, err := s.service.RequestCancellation(s.GetContext(), dto.RequestCancellationRequest{
		SubscriptionID: sub.ID,
		ReasonCategory: types.CancellationReasonDissatisfaction,
	})
	s.NoError(err)
	return resp
}

func (s *CancellationServiceSuite) TestRequestCancellationOpensNoticePeriod() {
	sub, c := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	s.Equal(types.CancellationRequestStatusInNoticePeriod, resp.Status)
	s.False(resp.WithinCoolingOff)
	s.NotNil(resp.NoticePeriodEndDate)

	// The commitment end is further out than the notice period, so it wins.
	s.Equal(types.ToDate(*c.CommitmentEndDate), resp.EffectiveDate)

	today := types.ToDate(time.Now().UTC())
	monthsLeft := types.MonthsBetween(today, *c.CommitmentEndDate)
	expectedFee := decimal.NewFromInt(int64(monthsLeft)).Mul(decimal.NewFromInt(200)).Round(types.MoneyPrecision)
	s.True(resp.EarlyTerminationFee.Equal(expectedFee), "fee %s, want %s", resp.EarlyTerminationFee, expectedFee)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPendingCancellation, stored.Status)

	storedContract, err := s.GetStores().ContractRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(types.ContractStatusInNoticePeriod, storedContract.Status)
}

func (s *CancellationServiceSuite) TestRequestCancellationGeneratesThreeOffers() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	s.Len(resp.Offers, 3)
	kinds := lo.Map(resp.Offers, func(o *cancellation.RetentionOffer, _ int) types.RetentionOfferType {
		return o.OfferType
	})
	s.Contains(kinds, types.RetentionOfferTypeFreeFreeze)
	s.Contains(kinds, types.RetentionOfferTypeDiscount)
	s.Contains(kinds, types.RetentionOfferTypeDowngrade)

	for _, o := range resp.Offers {
		s.Equal(types.RetentionOfferStatusPending, o.Status)
		s.WithinDuration(time.Now().UTC().Add(72*time.Hour), o.ExpiresAt, time.Minute)
	}
}

func (s *CancellationServiceSuite) TestNewMemberGetsNoLoyaltyOffer() {
	sub, _ := s.seedMembership(10)
	resp := s.requestCancellation(sub)

	s.Len(resp.Offers, 2)
	for _, o := range resp.Offers {
		s.NotEqual(types.RetentionOfferTypeDiscount, o.OfferType)
	}
}

func (s *CancellationServiceSuite) TestRequestWithinCoolingOffCancelsImmediately() {
	sub, c := s.seedMembership(0)
	resp := s.requestCancellation(sub)

	s.True(resp.WithinCoolingOff)
	s.Equal(types.CancellationRequestStatusCompleted, resp.Status)
	s.True(resp.EarlyTerminationFee.IsZero())
	s.Empty(resp.Offers)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, stored.Status)

	storedContract, err := s.GetStores().ContractRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(types.ContractStatusCancelled, storedContract.Status)
}

func (s *CancellationServiceSuite) TestDuplicateRequestRejected() {
	sub, _ := s.seedMembership(100)
	first := s.requestCancellation(sub)

	_, err := s.service.RequestCancellation(s.GetContext(), dto.RequestCancellationRequest{
		SubscriptionID: sub.ID,
		ReasonCategory: types.CancellationReasonDissatisfaction,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// First episode untouched.
	stored, err := s.GetStores().CancellationRepo.Get(s.GetContext(), first.ID)
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusInNoticePeriod, stored.Status)

	offers, err := s.GetStores().RetentionOfferRepo.ListByRequestID(s.GetContext(), first.ID)
	s.NoError(err)
	s.Len(offers, 3)
}

func (s *CancellationServiceSuite) TestPreviewDoesNotPersistAnything() {
	sub, _ := s.seedMembership(100)

	preview, err := s.service.PreviewCancellation(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Len(preview.Offers, 3)
	s.False(preview.WithinCoolingOff)

	_, err = s.GetStores().CancellationRepo.FindPendingBySubscriptionID(s.GetContext(), sub.ID)
	s.True(ierr.IsNotFound(err))

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
}

func (s *CancellationServiceSuite) findOffer(resp *dto.CancellationRequestResponse, kind types.RetentionOfferType) *cancellation.RetentionOffer {
	offer, found := lo.Find(resp.Offers, func(o *cancellation.RetentionOffer) bool {
		return o.OfferType == kind
	})
	s.True(found, "offer %s not generated", kind)
	return offer
}

func (s *CancellationServiceSuite) TestAcceptFreeFreezeOfferSavesMember() {
	sub, c := s.seedMembership(100)
	resp := s.requestCancellation(sub)
	offer := s.findOffer(resp, types.RetentionOfferTypeFreeFreeze)

	saved, err := s.service.AcceptRetentionOffer(s.GetContext(), offer.ID)
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusSaved, saved.Status)
	s.Equal(&offer.ID, saved.AcceptedOfferID)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)

	storedContract, err := s.GetStores().ContractRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(types.ContractStatusActive, storedContract.Status)

	// The free freeze credits the member's balance.
	balance, err := s.GetStores().FreezeBalanceRepo.GetByMemberID(s.GetContext(), sub.MemberID)
	s.NoError(err)
	s.Equal(30, balance.AvailableDays())

	// No other offer stays pending.
	pending, err := s.GetStores().RetentionOfferRepo.ListPendingBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(pending)
}

func (s *CancellationServiceSuite) TestAcceptExpiredOfferFails() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)
	offer := s.findOffer(resp, types.RetentionOfferTypeFreeFreeze)

	offer.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	s.NoError(s.GetStores().RetentionOfferRepo.Update(s.GetContext(), offer))

	_, err := s.service.AcceptRetentionOffer(s.GetContext(), offer.ID)
	s.Error(err)
	s.True(ierr.IsExpired(err))

	stored, err := s.GetStores().RetentionOfferRepo.Get(s.GetContext(), offer.ID)
	s.NoError(err)
	s.Equal(types.RetentionOfferStatusExpired, stored.Status)
}

func (s *CancellationServiceSuite) TestDeclineOffer() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)
	offer := s.findOffer(resp, types.RetentionOfferTypeDowngrade)

	declined, err := s.service.DeclineRetentionOffer(s.GetContext(), offer.ID)
	s.NoError(err)
	s.Equal(types.RetentionOfferStatusDeclined, declined.Status)

	// Declining one offer leaves the episode and its siblings open.
	stored, err := s.GetStores().CancellationRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusInNoticePeriod, stored.Status)
}

func (s *CancellationServiceSuite) TestWithdrawCancellation() {
	sub, c := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	withdrawn, err := s.service.WithdrawCancellation(s.GetContext(), resp.ID, dto.WithdrawCancellationRequest{Reason: "decided to stay"})
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusWithdrawn, withdrawn.Status)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)

	storedContract, err := s.GetStores().ContractRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(types.ContractStatusActive, storedContract.Status)

	pending, err := s.GetStores().RetentionOfferRepo.ListPendingBySubscriptionID(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(pending)
}

func (s *CancellationServiceSuite) TestCompleteCancellation() {
	sub, c := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	completed, err := s.service.CompleteCancellation(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusCompleted, completed.Status)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, stored.Status)
	s.NotNil(stored.ReactivationDeadline)
	s.WithinDuration(time.Now().UTC().AddDate(0, 0, 90), *stored.ReactivationDeadline, 24*time.Hour)

	storedContract, err := s.GetStores().ContractRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(types.ContractStatusCancelled, storedContract.Status)
}

func (s *CancellationServiceSuite) TestCompleteRequiresNoticePeriod() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	_, err := s.service.WithdrawCancellation(s.GetContext(), resp.ID, dto.WithdrawCancellationRequest{Reason: "staying"})
	s.NoError(err)

	_, err = s.service.CompleteCancellation(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

// seedDueRequest plants a request already in its notice period with an
// effective date in the past, as the completion batch would find it.
func (s *CancellationServiceSuite) seedDueRequest(subscriptionID, memberID string) *cancellation.CancellationRequest {
	ctx := s.GetContext()
	yesterday := types.ToDate(time.Now().UTC()).AddDate(0, 0, -1)
	noticeEnd := yesterday
	req := &cancellation.CancellationRequest{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CANCELLATION_REQUEST),
		MemberID:            memberID,
		SubscriptionID:      subscriptionID,
		Status:              types.CancellationRequestStatusInNoticePeriod,
		ReasonCategory:      types.CancellationReasonDissatisfaction,
		RequestedAt:         yesterday.AddDate(0, 0, -30),
		NoticePeriodEndDate: &noticeEnd,
		EffectiveDate:       yesterday,
		EarlyTerminationFee: decimal.Zero,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().CancellationRepo.Create(ctx, req))
	return req
}

func (s *CancellationServiceSuite) TestProcessCompletedCancellationsSkipsFailures() {
	ctx := s.GetContext()
	p := newTestPlan(ctx, "Premium", 200)
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	var good []*cancellation.CancellationRequest
	for i := 0; i < 2; i++ {
		sub := newActiveSubscription(ctx, p, 100)
		sub.Status = types.SubscriptionStatusPendingCancellation
		s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))
		good = append(good, s.seedDueRequest(sub.ID, sub.MemberID))
	}

	// This request points at a subscription that does not exist, so its
	// completion fails and must not block the others.
	broken := s.seedDueRequest("subs_missing", "member_missing")

	result, err := s.service.ProcessCompletedCancellations(ctx)
	s.NoError(err)
	s.Equal(2, result.Processed)
	s.Equal(1, result.Failed)
	s.Equal([]string{broken.ID}, result.FailedIDs)

	for _, req := range good {
		stored, err := s.GetStores().CancellationRepo.Get(ctx, req.ID)
		s.NoError(err)
		s.Equal(types.CancellationRequestStatusCompleted, stored.Status)
	}

	// The failed item is still due, so the next run picks it up again.
	stored, err := s.GetStores().CancellationRepo.Get(ctx, broken.ID)
	s.NoError(err)
	s.Equal(types.CancellationRequestStatusInNoticePeriod, stored.Status)
}

func (s *CancellationServiceSuite) TestSubmitExitSurveyLinksPendingRequest() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)

	survey, err := s.service.SubmitExitSurvey(s.GetContext(), dto.SubmitExitSurveyRequest{
		SubscriptionID: sub.ID,
		Rating:         2,
		WouldRecommend: false,
		Feedback:       lo.ToPtr("too crowded in the evenings"),
	})
	s.NoError(err)
	s.Equal(&resp.ID, survey.CancellationRequestID)

	stored, err := s.GetStores().CancellationRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(&survey.ID, stored.ExitSurveyID)
}

func (s *CancellationServiceSuite) TestExitSurveyIsOncePerSubscription() {
	sub, _ := s.seedMembership(100)

	_, err := s.service.SubmitExitSurvey(s.GetContext(), dto.SubmitExitSurveyRequest{
		SubscriptionID: sub.ID,
		Rating:         4,
		WouldRecommend: true,
	})
	s.NoError(err)

	_, err = s.service.SubmitExitSurvey(s.GetContext(), dto.SubmitExitSurveyRequest{
		SubscriptionID: sub.ID,
		Rating:         1,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *CancellationServiceSuite) TestWaiveTerminationFee() {
	sub, _ := s.seedMembership(100)
	resp := s.requestCancellation(sub)
	s.True(resp.EarlyTerminationFee.IsPositive())

	waived, err := s.service.WaiveTerminationFee(s.GetContext(), resp.ID, dto.WaiveTerminationFeeRequest{
		StaffID: "staff-2",
		Reason:  "hardship case",
	})
	s.NoError(err)
	s.True(waived.FeeWaived)
	s.True(waived.EffectiveFee().IsZero())
}

func (s *CancellationServiceSuite) TestRetentionRate() {
	subA, _ := s.seedMembership(100)
	respA := s.requestCancellation(subA)
	offer := s.findOffer(respA, types.RetentionOfferTypeFreeFreeze)
	_, err := s.service.AcceptRetentionOffer(s.GetContext(), offer.ID)
	s.NoError(err)

	subB, _ := s.seedMembership(100)
	respB := s.requestCancellation(subB)
	_, err = s.service.CompleteCancellation(s.GetContext(), respB.ID)
	s.NoError(err)

	rate, err := s.service.GetRetentionRate(s.GetContext(), time.Now().UTC().Add(-time.Hour))
	s.NoError(err)
	s.Equal(int64(2), rate.TotalResolved)
	s.Equal(int64(1), rate.TotalRetained)
	s.Equal("50", rate.RetentionRate.String())
}

func (s *CancellationServiceSuite) TestExitSurveyAnalytics() {
	subA, _ := s.seedMembership(100)
	subB, _ := s.seedMembership(100)

	_, err := s.service.SubmitExitSurvey(s.GetContext(), dto.SubmitExitSurveyRequest{
		SubscriptionID: subA.ID,
		Rating:         5,
		WouldRecommend: true,
	})
	s.NoError(err)
	_, err = s.service.SubmitExitSurvey(s.GetContext(), dto.SubmitExitSurveyRequest{
		SubscriptionID: subB.ID,
		Rating:         2,
	})
	s.NoError(err)

	analytics, err := s.service.GetExitSurveyAnalytics(s.GetContext())
	s.NoError(err)
	s.Equal(int64(2), analytics.TotalSurveys)
	s.Equal("3.5", analytics.AverageRating.String())
	s.Equal("50", analytics.RecommendPercent.String())
}
