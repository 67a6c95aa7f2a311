package dto

import (
	"github.com/liyaqa/membership/internal/domain/subscription"
)

// SubscriptionResponse is the API shape of a subscription
type SubscriptionResponse struct {
	*subscription.Subscription
}
