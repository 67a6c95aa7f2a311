package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/liyaqa/membership/internal/config"
	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/domain/subscription"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/types"
	"github.com/liyaqa/membership/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PlanRepo              plan.Repository
	ContractRepo          contract.Repository
	SubscriptionRepo      subscription.Repository
	CancellationRepo      cancellation.Repository
	RetentionOfferRepo    cancellation.OfferRepository
	ExitSurveyRepo        cancellation.SurveyRepository
	ScheduledChangeRepo   planchange.Repository
	PlanChangeHistoryRepo planchange.HistoryRepository
	FreezeBalanceRepo     freeze.BalanceRepository
	FreezeHistoryRepo     freeze.HistoryRepository
	FreezePackageRepo     freeze.PackageRepository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		PlanRepo:              NewInMemoryPlanStore(),
		ContractRepo:          NewInMemoryContractStore(),
		SubscriptionRepo:      NewInMemorySubscriptionStore(),
		CancellationRepo:      NewInMemoryCancellationStore(),
		RetentionOfferRepo:    NewInMemoryRetentionOfferStore(),
		ExitSurveyRepo:        NewInMemoryExitSurveyStore(),
		ScheduledChangeRepo:   NewInMemoryScheduledChangeStore(),
		PlanChangeHistoryRepo: NewInMemoryPlanChangeHistoryStore(),
		FreezeBalanceRepo:     NewInMemoryFreezeBalanceStore(),
		FreezeHistoryRepo:     NewInMemoryFreezeHistoryStore(),
		FreezePackageRepo:     NewInMemoryFreezePackageStore(),
	}
	s.db = NewMockPostgresClient()
	s.now = time.Now().UTC()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock transaction boundary
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the test start time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
