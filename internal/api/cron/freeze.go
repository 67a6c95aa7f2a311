package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

// FreezeHandler handles freeze related cron jobs
type FreezeHandler struct {
	freezeService service.FreezeService
	logger        *logger.Logger
}

// NewFreezeHandler creates a new freeze cron handler
func NewFreezeHandler(
	freezeService service.FreezeService,
	logger *logger.Logger,
) *FreezeHandler {
	return &FreezeHandler{
		freezeService: freezeService,
		logger:        logger,
	}
}

// ProcessExpiredFreezes unfreezes subscriptions whose freeze window has elapsed.
func (h *FreezeHandler) ProcessExpiredFreezes(c *gin.Context) {
	h.logger.Infow("starting freeze expiry cron job")

	response, err := h.freezeService.ProcessExpiredFreezes(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process expired freezes",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed freeze expiry cron job",
		"processed", response.Processed,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}
