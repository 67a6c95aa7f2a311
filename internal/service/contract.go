package service

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/api/dto"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/subscription"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// ContractService owns the membership contract lifecycle: creation with a
// locked pricing snapshot, the signature/approval flow, and cooling-off
// cancellation.
type ContractService interface {
	CreateContract(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	SignContract(ctx context.Context, id string) (*dto.ContractResponse, error)
	ApproveContract(ctx context.Context, id string, req dto.ApproveContractRequest) (*dto.ContractResponse, error)
	CancelWithinCoolingOff(ctx context.Context, id string, req dto.CoolingOffCancelRequest) (*dto.CoolingOffCancelResponse, error)
	GetContract(ctx context.Context, id string) (*dto.ContractResponse, error)
	GetContractByNumber(ctx context.Context, contractNumber string) (*dto.ContractResponse, error)
	GetContractBySubscriptionID(ctx context.Context, subscriptionID string) (*dto.ContractResponse, error)
	ListMemberContracts(ctx context.Context, memberID string) ([]*dto.ContractResponse, error)
	ListContractsByStatus(ctx context.Context, status types.ContractStatus, limit int) ([]*dto.ContractResponse, error)
}

type contractService struct {
	ServiceParams
}

func NewContractService(params ServiceParams) ContractService {
	return &contractService{
		ServiceParams: params,
	}
}

func (s *contractService) CreateContract(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if p.Status != types.StatusActive {
		return nil, ierr.NewError("plan is not active").
			WithHint("Contracts can only be created for active plans").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	tenantID := types.GetTenantID(ctx)
	startDate := types.ToDate(req.StartDate)

	noticeDays := req.NoticePeriodDays
	if noticeDays == 0 {
		noticeDays = s.Config.Membership.DefaultNoticePeriodDays
	}

	c := &contract.MembershipContract{
		ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONTRACT),
		MemberID:              req.MemberID,
		PlanID:                req.PlanID,
		ContractType:          req.ContractType,
		ContractTerm:          req.ContractTerm,
		Status:                types.ContractStatusPendingSignature,
		StartDate:             startDate,
		CoolingOffEndDate:     startDate.AddDate(0, 0, s.Config.Membership.CoolingOffDays),
		NoticePeriodDays:      noticeDays,
		LockedMembershipFee:   p.MembershipFee,
		LockedAdminFee:        p.AdminFee,
		LockedJoinFee:         p.JoinFee,
		Currency:              p.MembershipFee.Currency,
		TerminationFeeType:    req.TerminationFeeType,
		TerminationFeeAmount:  req.TerminationFeeAmount,
		TerminationFeePercent: req.TerminationFeePercent,
		AutoRenew:             req.AutoRenew,
		BaseModel:             types.GetDefaultBaseModel(ctx),
	}
	if c.TerminationFeeType == "" {
		c.TerminationFeeType = types.TerminationFeeTypeNone
	}

	if req.ContractType == types.ContractTypeFixedTerm {
		months := req.ContractTerm.ToMonths()
		commitmentEnd := startDate.AddDate(0, months, 0)
		c.CommitmentMonths = months
		c.CommitmentEndDate = &commitmentEnd
		c.EndDate = &commitmentEnd
	}

	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		MemberID:           req.MemberID,
		PlanID:             req.PlanID,
		Status:             types.SubscriptionStatusPendingSignature,
		StartDate:          startDate,
		CurrentPeriodStart: startDate,
		CurrentPeriodEnd:   startDate.AddDate(0, p.DurationMonths, 0),
		RecurringAmount:    p.RecurringTotal(),
		Currency:           p.MembershipFee.Currency,
		AutoRenew:          req.AutoRenew,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	c.SubscriptionID = sub.ID

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		seq, err := s.ContractRepo.NextContractSequence(ctx, tenantID, startDate.Year())
		if err != nil {
			return err
		}
		c.ContractNumber = contract.FormatContractNumber(
			s.Config.Membership.ContractNumberPrefix, startDate.Year(), seq)

		if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
			return err
		}
		return s.ContractRepo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created membership contract",
		"contract_id", c.ID,
		"contract_number", c.ContractNumber,
		"member_id", c.MemberID,
		"plan_id", c.PlanID)

	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) SignContract(ctx context.Context, id string) (*dto.ContractResponse, error) {
	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.SignByMember(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.ContractRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) ApproveContract(ctx context.Context, id string, req dto.ApproveContractRequest) (*dto.ContractResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.Get(ctx, c.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if err := c.ApproveByStaff(time.Now().UTC(), req.StaffID); err != nil {
		return nil, err
	}
	if err := sub.Activate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ContractRepo.Update(ctx, c); err != nil {
			return err
		}
		return s.SubscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("approved membership contract",
		"contract_id", c.ID,
		"approved_by", req.StaffID)

	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) CancelWithinCoolingOff(ctx context.Context, id string, req dto.CoolingOffCancelRequest) (*dto.CoolingOffCancelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.Get(ctx, c.SubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := c.CancelWithinCoolingOff(now, req.Reason); err != nil {
		return nil, err
	}
	if err := sub.CancelImmediately(now); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ContractRepo.Update(ctx, c); err != nil {
			return err
		}
		return s.SubscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	refund := c.CoolingOffRefund()
	s.Logger.Infow("cancelled contract within cooling-off",
		"contract_id", c.ID,
		"refund_amount", refund.String(),
		"currency", c.Currency)

	return &dto.CoolingOffCancelResponse{
		Contract:     &dto.ContractResponse{MembershipContract: c},
		RefundAmount: refund,
		Currency:     c.Currency,
	}, nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (*dto.ContractResponse, error) {
	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) GetContractByNumber(ctx context.Context, contractNumber string) (*dto.ContractResponse, error) {
	c, err := s.ContractRepo.GetByNumber(ctx, contractNumber)
	if err != nil {
		return nil, err
	}
	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) GetContractBySubscriptionID(ctx context.Context, subscriptionID string) (*dto.ContractResponse, error) {
	c, err := s.ContractRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return &dto.ContractResponse{MembershipContract: c}, nil
}

func (s *contractService) ListMemberContracts(ctx context.Context, memberID string) ([]*dto.ContractResponse, error) {
	contracts, err := s.ContractRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = &dto.ContractResponse{MembershipContract: c}
	}
	return responses, nil
}

func (s *contractService) ListContractsByStatus(ctx context.Context, status types.ContractStatus, limit int) ([]*dto.ContractResponse, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	contracts, err := s.ContractRepo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = &dto.ContractResponse{MembershipContract: c}
	}
	return responses, nil
}
