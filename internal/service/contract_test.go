package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/testutil"
	"github.com/liyaqa/membership/internal/types"
)

type ContractServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ContractService
}

func TestContractService(t *testing.T) {
	suite.Run(t, new(ContractServiceSuite))
}

func (s *ContractServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewContractService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *ContractServiceSuite) createContract(term types.ContractTerm) *dto.ContractResponse {
	p := newTestPlan(s.GetContext(), "Standard", 200)
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))

	req := dto.CreateContractRequest{
		MemberID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MEMBER),
		PlanID:             p.ID,
		ContractType:       types.ContractTypeFixedTerm,
		ContractTerm:       term,
		StartDate:          types.ToDate(time.Now().UTC()),
		AutoRenew:          true,
		TerminationFeeType: types.TerminationFeeTypeRemainingMonths,
	}
	resp, err := s.service.CreateContract(s.GetContext(), req)
	s.NoError(err)
	return resp
}

func (s *ContractServiceSuite) TestCreateContract() {
	resp := s.createContract(types.ContractTermTwelveMonths)

	year := time.Now().UTC().Year()
	s.Equal(fmt.Sprintf("LYQ-%d-000001", year), resp.ContractNumber)
	s.Equal(types.ContractStatusPendingSignature, resp.Status)
	s.Equal(12, resp.CommitmentMonths)
	s.Equal(resp.StartDate.AddDate(0, 0, 7), resp.CoolingOffEndDate)
	s.Equal("200", resp.LockedMembershipFee.Amount.String())
	s.Equal("150", resp.LockedJoinFee.Amount.String())

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), resp.SubscriptionID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPendingSignature, sub.Status)
	s.Equal("200", sub.RecurringAmount.String())
}

func (s *ContractServiceSuite) TestContractNumbersAreSequentialPerYear() {
	first := s.createContract(types.ContractTermTwelveMonths)
	second := s.createContract(types.ContractTermSixMonths)

	year := time.Now().UTC().Year()
	s.Equal(fmt.Sprintf("LYQ-%d-000001", year), first.ContractNumber)
	s.Equal(fmt.Sprintf("LYQ-%d-000002", year), second.ContractNumber)
}

func (s *ContractServiceSuite) TestSignAndApproveActivatesSubscription() {
	created := s.createContract(types.ContractTermTwelveMonths)

	signed, err := s.service.SignContract(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotNil(signed.SignedAt)

	approved, err := s.service.ApproveContract(s.GetContext(), created.ID, dto.ApproveContractRequest{StaffID: "staff-1"})
	s.NoError(err)
	s.Equal(types.ContractStatusActive, approved.Status)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), created.SubscriptionID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
}

func (s *ContractServiceSuite) TestApproveRequiresSignature() {
	created := s.createContract(types.ContractTermTwelveMonths)

	_, err := s.service.ApproveContract(s.GetContext(), created.ID, dto.ApproveContractRequest{StaffID: "staff-1"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ContractServiceSuite) TestCancelWithinCoolingOff() {
	created := s.createContract(types.ContractTermTwelveMonths)
	_, err := s.service.SignContract(s.GetContext(), created.ID)
	s.NoError(err)
	_, err = s.service.ApproveContract(s.GetContext(), created.ID, dto.ApproveContractRequest{StaffID: "staff-1"})
	s.NoError(err)

	resp, err := s.service.CancelWithinCoolingOff(s.GetContext(), created.ID, dto.CoolingOffCancelRequest{Reason: "changed my mind"})
	s.NoError(err)
	// Join fee 150 plus first membership fee 200, both refunded in full.
	s.Equal("350", resp.RefundAmount.String())
	s.Equal("SAR", resp.Currency)
	s.Equal(types.ContractStatusCancelled, resp.Contract.Status)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), created.SubscriptionID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, sub.Status)
}

func (s *ContractServiceSuite) TestCreateContractRejectsInactivePlan() {
	p := newTestPlan(s.GetContext(), "Retired", 200)
	p.Status = types.StatusInactive
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))

	_, err := s.service.CreateContract(s.GetContext(), dto.CreateContractRequest{
		MemberID:     "member-1",
		PlanID:       p.ID,
		ContractType: types.ContractTypeMonthToMonth,
		StartDate:    time.Now().UTC(),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ContractServiceSuite) TestGetContractByNumber() {
	created := s.createContract(types.ContractTermTwelveMonths)

	found, err := s.service.GetContractByNumber(s.GetContext(), created.ContractNumber)
	s.NoError(err)
	s.Equal(created.ID, found.ID)

	_, err = s.service.GetContractByNumber(s.GetContext(), "LYQ-1999-000001")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ContractServiceSuite) TestListContractsByStatus() {
	first := s.createContract(types.ContractTermTwelveMonths)
	second := s.createContract(types.ContractTermSixMonths)

	_, err := s.service.SignContract(s.GetContext(), first.ID)
	s.NoError(err)
	_, err = s.service.ApproveContract(s.GetContext(), first.ID, dto.ApproveContractRequest{StaffID: "staff-1"})
	s.NoError(err)

	active, err := s.service.ListContractsByStatus(s.GetContext(), types.ContractStatusActive, 10)
	s.NoError(err)
	s.Len(active, 1)
	s.Equal(first.ID, active[0].ID)

	pending, err := s.service.ListContractsByStatus(s.GetContext(), types.ContractStatusPendingSignature, 10)
	s.NoError(err)
	s.Len(pending, 1)
	s.Equal(second.ID, pending[0].ID)

	_, err = s.service.ListContractsByStatus(s.GetContext(), "bogus", 10)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
