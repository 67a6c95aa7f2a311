package testutil

import (
	"context"

	"github.com/liyaqa/membership/internal/domain/freeze"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// InMemoryFreezeBalanceStore implements freeze.BalanceRepository
type InMemoryFreezeBalanceStore struct {
	*InMemoryStore[*freeze.MemberFreezeBalance]
}

func NewInMemoryFreezeBalanceStore() *InMemoryFreezeBalanceStore {
	return &InMemoryFreezeBalanceStore{
		InMemoryStore: NewInMemoryStore[*freeze.MemberFreezeBalance](),
	}
}

func (s *InMemoryFreezeBalanceStore) Create(ctx context.Context, balance *freeze.MemberFreezeBalance) error {
	if balance == nil {
		return ierr.NewError("freeze balance cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, balance.ID, balance)
}

func (s *InMemoryFreezeBalanceStore) GetByMemberID(ctx context.Context, memberID string) (*freeze.MemberFreezeBalance, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, b *freeze.MemberFreezeBalance) bool {
		return b.MemberID == memberID
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("freeze balance not found").
			WithReportableDetails(map[string]any{"member_id": memberID}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryFreezeBalanceStore) Update(ctx context.Context, balance *freeze.MemberFreezeBalance) error {
	return s.InMemoryStore.Update(ctx, balance.ID, balance)
}

// InMemoryFreezeHistoryStore implements freeze.HistoryRepository
type InMemoryFreezeHistoryStore struct {
	*InMemoryStore[*freeze.FreezeHistory]
}

func NewInMemoryFreezeHistoryStore() *InMemoryFreezeHistoryStore {
	return &InMemoryFreezeHistoryStore{
		InMemoryStore: NewInMemoryStore[*freeze.FreezeHistory](),
	}
}

func (s *InMemoryFreezeHistoryStore) Create(ctx context.Context, history *freeze.FreezeHistory) error {
	if history == nil {
		return ierr.NewError("freeze history cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, history.ID, history)
}

func (s *InMemoryFreezeHistoryStore) Get(ctx context.Context, id string) (*freeze.FreezeHistory, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryFreezeHistoryStore) Update(ctx context.Context, history *freeze.FreezeHistory) error {
	return s.InMemoryStore.Update(ctx, history.ID, history)
}

func (s *InMemoryFreezeHistoryStore) FindActiveBySubscriptionID(ctx context.Context, subscriptionID string) (*freeze.FreezeHistory, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, h *freeze.FreezeHistory) bool {
		return h.SubscriptionID == subscriptionID && h.IsActive()
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("no active freeze record").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryFreezeHistoryStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*freeze.FreezeHistory, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, h *freeze.FreezeHistory) bool {
		return h.SubscriptionID == subscriptionID
	}, func(i, j *freeze.FreezeHistory) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}, 0)
}

// InMemoryFreezePackageStore implements freeze.PackageRepository
type InMemoryFreezePackageStore struct {
	*InMemoryStore[*freeze.FreezePackage]
}

func NewInMemoryFreezePackageStore() *InMemoryFreezePackageStore {
	return &InMemoryFreezePackageStore{
		InMemoryStore: NewInMemoryStore[*freeze.FreezePackage](),
	}
}

func (s *InMemoryFreezePackageStore) Create(ctx context.Context, pkg *freeze.FreezePackage) error {
	if pkg == nil {
		return ierr.NewError("freeze package cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, pkg.ID, pkg)
}

func (s *InMemoryFreezePackageStore) Get(ctx context.Context, id string) (*freeze.FreezePackage, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryFreezePackageStore) List(ctx context.Context) ([]*freeze.FreezePackage, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, p *freeze.FreezePackage) bool {
		return p.Status == types.StatusActive
	}, func(i, j *freeze.FreezePackage) bool {
		return i.Days < j.Days
	}, 0)
}
