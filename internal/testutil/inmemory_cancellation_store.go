package testutil

import (
	"context"
	"time"

	"github.com/liyaqa/membership/internal/domain/cancellation"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/types"
)

// InMemoryCancellationStore implements cancellation.Repository
type InMemoryCancellationStore struct {
	*InMemoryStore[*cancellation.CancellationRequest]
}

func NewInMemoryCancellationStore() *InMemoryCancellationStore {
	return &InMemoryCancellationStore{
		InMemoryStore: NewInMemoryStore[*cancellation.CancellationRequest](),
	}
}

func (s *InMemoryCancellationStore) Create(ctx context.Context, req *cancellation.CancellationRequest) error {
	if req == nil {
		return ierr.NewError("cancellation request cannot be nil").Mark(ierr.ErrValidation)
	}

	// Mirrors the partial unique index on (subscription_id) where status is
	// non-terminal.
	existing, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, r *cancellation.CancellationRequest) bool {
		return r.SubscriptionID == req.SubscriptionID && !r.Status.IsTerminal()
	}, nil, 1)
	if len(existing) > 0 && !req.Status.IsTerminal() {
		return ierr.NewError("a cancellation request is already pending for this subscription").
			WithReportableDetails(map[string]any{"subscription_id": req.SubscriptionID}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, req.ID, req)
}

func (s *InMemoryCancellationStore) Get(ctx context.Context, id string) (*cancellation.CancellationRequest, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryCancellationStore) Update(ctx context.Context, req *cancellation.CancellationRequest) error {
	return s.InMemoryStore.Update(ctx, req.ID, req)
}

func (s *InMemoryCancellationStore) FindPendingBySubscriptionID(ctx context.Context, subscriptionID string) (*cancellation.CancellationRequest, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, r *cancellation.CancellationRequest) bool {
		return r.SubscriptionID == subscriptionID && !r.Status.IsTerminal()
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("no pending cancellation request").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryCancellationStore) ListDueForCompletion(ctx context.Context, date time.Time, limit int) ([]*cancellation.CancellationRequest, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, r *cancellation.CancellationRequest) bool {
		return r.Status == types.CancellationRequestStatusInNoticePeriod &&
			!r.EffectiveDate.After(date)
	}, func(i, j *cancellation.CancellationRequest) bool {
		return i.EffectiveDate.Before(j.EffectiveDate)
	}, limit)
}

func (s *InMemoryCancellationStore) CountResolvedSince(ctx context.Context, since time.Time) (int64, int64, error) {
	resolved, err := s.InMemoryStore.List(ctx, func(ctx context.Context, r *cancellation.CancellationRequest) bool {
		return r.ResolvedAt != nil && !r.ResolvedAt.Before(since)
	}, nil, 0)
	if err != nil {
		return 0, 0, err
	}

	var retained int64
	for _, r := range resolved {
		if r.Status == types.CancellationRequestStatusSaved ||
			r.Status == types.CancellationRequestStatusWithdrawn {
			retained++
		}
	}
	return int64(len(resolved)), retained, nil
}

// InMemoryRetentionOfferStore implements cancellation.OfferRepository
type InMemoryRetentionOfferStore struct {
	*InMemoryStore[*cancellation.RetentionOffer]
}

func NewInMemoryRetentionOfferStore() *InMemoryRetentionOfferStore {
	return &InMemoryRetentionOfferStore{
		InMemoryStore: NewInMemoryStore[*cancellation.RetentionOffer](),
	}
}

func (s *InMemoryRetentionOfferStore) Create(ctx context.Context, offer *cancellation.RetentionOffer) error {
	if offer == nil {
		return ierr.NewError("retention offer cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, offer.ID, offer)
}

func (s *InMemoryRetentionOfferStore) Get(ctx context.Context, id string) (*cancellation.RetentionOffer, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryRetentionOfferStore) Update(ctx context.Context, offer *cancellation.RetentionOffer) error {
	return s.InMemoryStore.Update(ctx, offer.ID, offer)
}

func (s *InMemoryRetentionOfferStore) ListByRequestID(ctx context.Context, requestID string) ([]*cancellation.RetentionOffer, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, o *cancellation.RetentionOffer) bool {
		return o.CancellationRequestID == requestID
	}, func(i, j *cancellation.RetentionOffer) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	}, 0)
}

func (s *InMemoryRetentionOfferStore) ListPendingBySubscriptionID(ctx context.Context, subscriptionID string) ([]*cancellation.RetentionOffer, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, o *cancellation.RetentionOffer) bool {
		return o.SubscriptionID == subscriptionID && o.Status == types.RetentionOfferStatusPending
	}, func(i, j *cancellation.RetentionOffer) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	}, 0)
}

// InMemoryExitSurveyStore implements cancellation.SurveyRepository
type InMemoryExitSurveyStore struct {
	*InMemoryStore[*cancellation.ExitSurvey]
}

func NewInMemoryExitSurveyStore() *InMemoryExitSurveyStore {
	return &InMemoryExitSurveyStore{
		InMemoryStore: NewInMemoryStore[*cancellation.ExitSurvey](),
	}
}

func (s *InMemoryExitSurveyStore) Create(ctx context.Context, survey *cancellation.ExitSurvey) error {
	if survey == nil {
		return ierr.NewError("exit survey cannot be nil").Mark(ierr.ErrValidation)
	}

	existing, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, e *cancellation.ExitSurvey) bool {
		return e.SubscriptionID == survey.SubscriptionID
	}, nil, 1)
	if len(existing) > 0 {
		return ierr.NewError("an exit survey already exists for this subscription").
			WithReportableDetails(map[string]any{"subscription_id": survey.SubscriptionID}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, survey.ID, survey)
}

func (s *InMemoryExitSurveyStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*cancellation.ExitSurvey, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, e *cancellation.ExitSurvey) bool {
		return e.SubscriptionID == subscriptionID
	}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("exit survey not found").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryExitSurveyStore) List(ctx context.Context) ([]*cancellation.ExitSurvey, error) {
	return s.InMemoryStore.List(ctx, nil, func(i, j *cancellation.ExitSurvey) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	}, 0)
}
