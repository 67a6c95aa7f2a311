package service

import (
	"github.com/liyaqa/membership/internal/config"
	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/domain/subscription"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

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

// NewServiceParams assembles the dependencies shared by all services
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	planRepo plan.Repository,
	contractRepo contract.Repository,
	subscriptionRepo subscription.Repository,
	cancellationRepo cancellation.Repository,
	retentionOfferRepo cancellation.OfferRepository,
	exitSurveyRepo cancellation.SurveyRepository,
	scheduledChangeRepo planchange.Repository,
	planChangeHistoryRepo planchange.HistoryRepository,
	freezeBalanceRepo freeze.BalanceRepository,
	freezeHistoryRepo freeze.HistoryRepository,
	freezePackageRepo freeze.PackageRepository,
) ServiceParams {
	return ServiceParams{
		Logger:                logger,
		Config:                config,
		DB:                    db,
		PlanRepo:              planRepo,
		ContractRepo:          contractRepo,
		SubscriptionRepo:      subscriptionRepo,
		CancellationRepo:      cancellationRepo,
		RetentionOfferRepo:    retentionOfferRepo,
		ExitSurveyRepo:        exitSurveyRepo,
		ScheduledChangeRepo:   scheduledChangeRepo,
		PlanChangeHistoryRepo: planChangeHistoryRepo,
		FreezeBalanceRepo:     freezeBalanceRepo,
		FreezeHistoryRepo:     freezeHistoryRepo,
		FreezePackageRepo:     freezePackageRepo,
	}
}
