package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/liyaqa/membership/internal/domain/contract"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// InMemoryContractStore implements contract.Repository
type InMemoryContractStore struct {
	*InMemoryStore[*contract.MembershipContract]

	mu        sync.Mutex
	sequences map[string]int64
}

func NewInMemoryContractStore() *InMemoryContractStore {
	return &InMemoryContractStore{
		InMemoryStore: NewInMemoryStore[*contract.MembershipContract](),
		sequences:     make(map[string]int64),
	}
}

func (s *InMemoryContractStore) Create(ctx context.Context, c *contract.MembershipContract) error {
	if c == nil {
		return ierr.NewError("contract cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryContractStore) Get(ctx context.Context, id string) (*contract.MembershipContract, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryContractStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*contract.MembershipContract, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, c *contract.MembershipContract) bool {
		return c.SubscriptionID == subscriptionID
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("contract not found").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryContractStore) GetByNumber(ctx context.Context, contractNumber string) (*contract.MembershipContract, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, c *contract.MembershipContract) bool {
		return c.ContractNumber == contractNumber
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("contract not found").
			WithReportableDetails(map[string]any{"contract_number": contractNumber}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryContractStore) Update(ctx context.Context, c *contract.MembershipContract) error {
	return s.InMemoryStore.Update(ctx, c.ID, c)
}

func (s *InMemoryContractStore) ListByMemberID(ctx context.Context, memberID string) ([]*contract.MembershipContract, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, c *contract.MembershipContract) bool {
		return c.MemberID == memberID
	}, func(i, j *contract.MembershipContract) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}, 0)
}

func (s *InMemoryContractStore) ListByStatus(ctx context.Context, status types.ContractStatus, limit int) ([]*contract.MembershipContract, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, c *contract.MembershipContract) bool {
		return c.Status == status
	}, func(i, j *contract.MembershipContract) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	}, limit)
}

func (s *InMemoryContractStore) NextContractSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s:%d", tenantID, year)
	s.sequences[key]++
	return s.sequences[key], nil
}
