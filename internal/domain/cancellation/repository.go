package cancellation

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, req *CancellationRequest) error
	Get(ctx context.Context, id string) (*CancellationRequest, error)
	Update(ctx context.Context, req *CancellationRequest) error
	// FindPendingBySubscriptionID returns the non-terminal request for the
	// subscription, or a not-found error when none exists.
	FindPendingBySubscriptionID(ctx context.Context, subscriptionID string) (*CancellationRequest, error)
	// ListDueForCompletion returns in-notice-period requests whose effective
	// date is on or before the given date.
	ListDueForCompletion(ctx context.Context, date time.Time, limit int) ([]*CancellationRequest, error)
	// CountResolvedSince returns, for retention reporting, how many requests
	// were resolved since the given time and how many of those were saved or
	// withdrawn.
	CountResolvedSince(ctx context.Context, since time.Time) (total int64, retained int64, err error)
}

type OfferRepository interface {
	Create(ctx context.Context, offer *RetentionOffer) error
	Get(ctx context.Context, id string) (*RetentionOffer, error)
	Update(ctx context.Context, offer *RetentionOffer) error
	ListByRequestID(ctx context.Context, requestID string) ([]*RetentionOffer, error)
	ListPendingBySubscriptionID(ctx context.Context, subscriptionID string) ([]*RetentionOffer, error)
}

type SurveyRepository interface {
	Create(ctx context.Context, survey *ExitSurvey) error
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*ExitSurvey, error)
	List(ctx context.Context) ([]*ExitSurvey, error)
}
