package repository

import (
	"github.com/liyaqa/membership/internal/domain/cancellation"
	"github.com/liyaqa/membership/internal/domain/contract"
	"github.com/liyaqa/membership/internal/domain/freeze"
	"github.com/liyaqa/membership/internal/domain/plan"
	"github.com/liyaqa/membership/internal/domain/planchange"
	"github.com/liyaqa/membership/internal/domain/subscription"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	postgresRepo "github.com/liyaqa/membership/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewContractRepository(db *postgres.DB, logger *logger.Logger) contract.Repository {
	return postgresRepo.NewContractRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewCancellationRepository(db *postgres.DB, logger *logger.Logger) cancellation.Repository {
	return postgresRepo.NewCancellationRepository(db, logger)
}

func NewRetentionOfferRepository(db *postgres.DB, logger *logger.Logger) cancellation.OfferRepository {
	return postgresRepo.NewRetentionOfferRepository(db, logger)
}

func NewExitSurveyRepository(db *postgres.DB, logger *logger.Logger) cancellation.SurveyRepository {
	return postgresRepo.NewExitSurveyRepository(db, logger)
}

func NewScheduledPlanChangeRepository(db *postgres.DB, logger *logger.Logger) planchange.Repository {
	return postgresRepo.NewScheduledPlanChangeRepository(db, logger)
}

func NewPlanChangeHistoryRepository(db *postgres.DB, logger *logger.Logger) planchange.HistoryRepository {
	return postgresRepo.NewPlanChangeHistoryRepository(db, logger)
}

func NewFreezeBalanceRepository(db *postgres.DB, logger *logger.Logger) freeze.BalanceRepository {
	return postgresRepo.NewFreezeBalanceRepository(db, logger)
}

func NewFreezeHistoryRepository(db *postgres.DB, logger *logger.Logger) freeze.HistoryRepository {
	return postgresRepo.NewFreezeHistoryRepository(db, logger)
}

func NewFreezePackageRepository(db *postgres.DB, logger *logger.Logger) freeze.PackageRepository {
	return postgresRepo.NewFreezePackageRepository(db, logger)
}
