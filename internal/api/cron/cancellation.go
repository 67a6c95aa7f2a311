package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

// CancellationHandler handles cancellation related cron jobs
type CancellationHandler struct {
	cancellationService service.CancellationService
	logger              *logger.Logger
}

// NewCancellationHandler creates a new cancellation cron handler
func NewCancellationHandler(
	cancellationService service.CancellationService,
	logger *logger.Logger,
) *CancellationHandler {
	return &CancellationHandler{
		cancellationService: cancellationService,
		logger:              logger,
	}
}

// ProcessCompletedCancellations finalizes cancellation requests whose notice
// period has elapsed.
func (h *CancellationHandler) ProcessCompletedCancellations(c *gin.Context) {
	h.logger.Infow("starting cancellation completion cron job")

	response, err := h.cancellationService.ProcessCompletedCancellations(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process completed cancellations",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed cancellation completion cron job",
		"processed", response.Processed,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}
