package api

import (
	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/api/cron"
	v1 "github.com/liyaqa/membership/internal/api/v1"
	"github.com/liyaqa/membership/internal/rest/middleware"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Contract     *v1.ContractHandler
	Subscription *v1.SubscriptionHandler
	Cancellation *v1.CancellationHandler
	PlanChange   *v1.PlanChangeHandler
	Freeze       *v1.FreezeHandler

	CronCancellation *cron.CancellationHandler
	CronPlanChange   *cron.PlanChangeHandler
	CronFreeze       *cron.FreezeHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.TenantMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	// cron routes, triggered by an external scheduler
	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Contract routes
	contracts := router.Group("/contracts")
	{
		contracts.POST("", handlers.Contract.CreateContract)
		contracts.GET("", handlers.Contract.ListContracts)
		contracts.GET("/:id", handlers.Contract.GetContract)
		contracts.GET("/number/:number", handlers.Contract.GetContractByNumber)
		contracts.POST("/:id/sign", handlers.Contract.SignContract)
		contracts.POST("/:id/approve", handlers.Contract.ApproveContract)
		contracts.POST("/:id/cooling-off-cancel", handlers.Contract.CancelWithinCoolingOff)
	}

	// Subscription routes
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/renew", handlers.Subscription.RenewSubscription)
		subscriptions.POST("/:id/confirm-payment", handlers.Subscription.ConfirmPayment)
		subscriptions.POST("/:id/mark-past-due", handlers.Subscription.MarkPastDue)
		subscriptions.POST("/:id/reactivate", handlers.Subscription.ReactivateSubscription)
		subscriptions.POST("/:id/use-class", handlers.Subscription.UseClass)
		subscriptions.POST("/:id/use-guest-pass", handlers.Subscription.UseGuestPass)
	}

	// Cancellation routes
	cancellations := router.Group("/cancellations")
	{
		cancellations.GET("/preview/:subscription_id", handlers.Cancellation.PreviewCancellation)
		cancellations.POST("", handlers.Cancellation.RequestCancellation)
		cancellations.GET("/pending/:subscription_id", handlers.Cancellation.GetPendingCancellation)
		cancellations.POST("/:id/withdraw", handlers.Cancellation.WithdrawCancellation)
		cancellations.POST("/:id/complete", handlers.Cancellation.CompleteCancellation)
		cancellations.POST("/:id/waive-fee", handlers.Cancellation.WaiveTerminationFee)
		cancellations.POST("/offers/:offer_id/accept", handlers.Cancellation.AcceptRetentionOffer)
		cancellations.POST("/offers/:offer_id/decline", handlers.Cancellation.DeclineRetentionOffer)
		cancellations.POST("/exit-surveys", handlers.Cancellation.SubmitExitSurvey)
		cancellations.GET("/retention-rate", handlers.Cancellation.GetRetentionRate)
		cancellations.GET("/exit-surveys/analytics", handlers.Cancellation.GetExitSurveyAnalytics)
	}

	// Plan change routes
	planChanges := router.Group("/plan-changes")
	{
		planChanges.POST("/preview", handlers.PlanChange.PreviewPlanChange)
		planChanges.POST("", handlers.PlanChange.ChangePlan)
		planChanges.POST("/:id/cancel", handlers.PlanChange.CancelScheduledChange)
		planChanges.GET("/history/:subscription_id", handlers.PlanChange.GetPlanChangeHistory)
		planChanges.GET("/pending/:subscription_id", handlers.PlanChange.GetPendingScheduledChange)
	}

	// Freeze routes
	freezes := router.Group("/freezes")
	{
		freezes.POST("", handlers.Freeze.FreezeSubscription)
		freezes.POST("/unfreeze/:subscription_id", handlers.Freeze.UnfreezeSubscription)
		freezes.POST("/purchase", handlers.Freeze.PurchaseFreezeDays)
		freezes.POST("/grant", handlers.Freeze.GrantFreezeDays)
		freezes.GET("/history/:subscription_id", handlers.Freeze.GetFreezeHistory)
	}

	// Member-scoped routes
	members := router.Group("/members")
	{
		members.GET("/:id/contracts", handlers.Contract.ListMemberContracts)
		members.GET("/:id/subscriptions", handlers.Subscription.ListMemberSubscriptions)
		members.GET("/:id/freeze-balance", handlers.Freeze.GetFreezeBalance)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/cancellations/process", handlers.CronCancellation.ProcessCompletedCancellations)
	router.POST("/plan-changes/process", handlers.CronPlanChange.ProcessScheduledChanges)
	router.POST("/freezes/process", handlers.CronFreeze.ProcessExpiredFreezes)
}
