package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/liyaqa/membership/internal/api"
	"github.com/liyaqa/membership/internal/api/cron"
	v1 "github.com/liyaqa/membership/internal/api/v1"
	"github.com/liyaqa/membership/internal/config"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/postgres"
	"github.com/liyaqa/membership/internal/repository"
	"github.com/liyaqa/membership/internal/service"
	"github.com/liyaqa/membership/internal/validator"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Repositories
			repository.NewPlanRepository,
			repository.NewContractRepository,
			repository.NewSubscriptionRepository,
			repository.NewCancellationRepository,
			repository.NewRetentionOfferRepository,
			repository.NewExitSurveyRepository,
			repository.NewScheduledPlanChangeRepository,
			repository.NewPlanChangeHistoryRepository,
			repository.NewFreezeBalanceRepository,
			repository.NewFreezeHistoryRepository,
			repository.NewFreezePackageRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewContractService,
			service.NewSubscriptionService,
			service.NewCancellationService,
			service.NewPlanChangeService,
			service.NewFreezeService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	contractService service.ContractService,
	subscriptionService service.SubscriptionService,
	cancellationService service.CancellationService,
	planChangeService service.PlanChangeService,
	freezeService service.FreezeService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(logger),
		Contract:     v1.NewContractHandler(contractService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
		Cancellation: v1.NewCancellationHandler(cancellationService, logger),
		PlanChange:   v1.NewPlanChangeHandler(planChangeService, logger),
		Freeze:       v1.NewFreezeHandler(freezeService, logger),

		CronCancellation: cron.NewCancellationHandler(cancellationService, logger),
		CronPlanChange:   cron.NewPlanChangeHandler(planChangeService, logger),
		CronFreeze:       cron.NewFreezeHandler(freezeService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
