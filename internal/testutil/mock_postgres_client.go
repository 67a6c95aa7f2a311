package testutil

import (
	"context"

	"github.com/liyaqa/membership/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient satisfies the transaction boundary without a real
// database. The in-memory stores are not transactional, so the function is
// simply executed.
type MockPostgresClient struct{}

func NewMockPostgresClient() postgres.IClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
