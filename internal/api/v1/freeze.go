package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

type FreezeHandler struct {
	service service.FreezeService
	log     *logger.Logger
}

func NewFreezeHandler(service service.FreezeService, log *logger.Logger) *FreezeHandler {
	return &FreezeHandler{service: service, log: log}
}

func (h *FreezeHandler) FreezeSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.FreezeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.FreezeSubscription(ctx, req)
	if err != nil {
		h.log.Error("Failed to freeze subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FreezeHandler) UnfreezeSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.UnfreezeSubscription(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to unfreeze subscription", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FreezeHandler) PurchaseFreezeDays(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.PurchaseFreezeDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PurchaseFreezeDays(ctx, req)
	if err != nil {
		h.log.Error("Failed to purchase freeze days", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FreezeHandler) GrantFreezeDays(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GrantFreezeDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GrantFreezeDays(ctx, req)
	if err != nil {
		h.log.Error("Failed to grant freeze days", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FreezeHandler) GetFreezeBalance(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetFreezeBalance(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get freeze balance", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FreezeHandler) GetFreezeHistory(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetFreezeHistory(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to get freeze history", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
