package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

type PlanChangeHandler struct {
	service service.PlanChangeService
	log     *logger.Logger
}

func NewPlanChangeHandler(service service.PlanChangeService, log *logger.Logger) *PlanChangeHandler {
	return &PlanChangeHandler{service: service, log: log}
}

func (h *PlanChangeHandler) PreviewPlanChange(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PreviewPlanChange(ctx, req)
	if err != nil {
		h.log.Error("Failed to preview plan change", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PlanChangeHandler) ChangePlan(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ChangePlan(ctx, req)
	if err != nil {
		h.log.Error("Failed to change plan", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PlanChangeHandler) CancelScheduledChange(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CancelScheduledChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelScheduledChange(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to cancel scheduled plan change", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PlanChangeHandler) GetPlanChangeHistory(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetPlanChangeHistory(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to get plan change history", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanChangeHandler) GetPendingScheduledChange(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetPendingScheduledChange(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to get pending scheduled change", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
