package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

// PlanChangeHandler handles plan change related cron jobs
type PlanChangeHandler struct {
	planChangeService service.PlanChangeService
	logger            *logger.Logger
}

// NewPlanChangeHandler creates a new plan change cron handler
func NewPlanChangeHandler(
	planChangeService service.PlanChangeService,
	logger *logger.Logger,
) *PlanChangeHandler {
	return &PlanChangeHandler{
		planChangeService: planChangeService,
		logger:            logger,
	}
}

// ProcessScheduledChanges applies pending plan changes whose effective date
// has arrived.
func (h *PlanChangeHandler) ProcessScheduledChanges(c *gin.Context) {
	h.logger.Infow("starting scheduled plan change cron job")

	response, err := h.planChangeService.ProcessScheduledChanges(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process scheduled plan changes",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed scheduled plan change cron job",
		"processed", response.Processed,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}
