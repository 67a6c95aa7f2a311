package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
	"github.com/liyaqa/membership/internal/types"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetSubscription(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get subscription", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ListMemberSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListMemberSubscriptions(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to list member subscriptions", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(ierr.NewError("invalid limit").
				WithHint("limit must be a positive integer").
				Mark(ierr.ErrValidation))
			return
		}
		limit = parsed
	}

	resp, err := h.service.ListSubscriptionsByStatus(ctx, types.SubscriptionStatus(c.Query("status")), limit)
	if err != nil {
		h.log.Error("Failed to list subscriptions", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.RenewSubscription(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to renew subscription", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ConfirmPayment(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ConfirmPayment(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to confirm payment", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) MarkPastDue(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.MarkPastDue(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to mark subscription past due", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ReactivateSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ReactivateSubscription(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to reactivate subscription", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) UseClass(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.UseClass(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to record class usage", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) UseGuestPass(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.UseGuestPass(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to record guest pass usage", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
