package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
)

type CancellationHandler struct {
	service service.CancellationService
	log     *logger.Logger
}

func NewCancellationHandler(service service.CancellationService, log *logger.Logger) *CancellationHandler {
	return &CancellationHandler{service: service, log: log}
}

func (h *CancellationHandler) PreviewCancellation(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.PreviewCancellation(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to preview cancellation", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) RequestCancellation(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.RequestCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RequestCancellation(ctx, req)
	if err != nil {
		h.log.Error("Failed to request cancellation", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *CancellationHandler) AcceptRetentionOffer(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.AcceptRetentionOffer(ctx, c.Param("offer_id"))
	if err != nil {
		h.log.Error("Failed to accept retention offer", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) DeclineRetentionOffer(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.DeclineRetentionOffer(ctx, c.Param("offer_id"))
	if err != nil {
		h.log.Error("Failed to decline retention offer", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) WithdrawCancellation(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.WithdrawCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.WithdrawCancellation(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to withdraw cancellation", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) CompleteCancellation(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.CompleteCancellation(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to complete cancellation", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) WaiveTerminationFee(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.WaiveTerminationFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.WaiveTerminationFee(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to waive termination fee", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) SubmitExitSurvey(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.SubmitExitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SubmitExitSurvey(ctx, req)
	if err != nil {
		h.log.Error("Failed to submit exit survey", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *CancellationHandler) GetPendingCancellation(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetPendingCancellation(ctx, c.Param("subscription_id"))
	if err != nil {
		h.log.Error("Failed to get pending cancellation", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) GetRetentionRate(c *gin.Context) {
	ctx := c.Request.Context()

	// Default reporting window is the trailing 30 days.
	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("since must be an RFC3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		since = parsed
	}

	resp, err := h.service.GetRetentionRate(ctx, since)
	if err != nil {
		h.log.Error("Failed to get retention rate", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) GetExitSurveyAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetExitSurveyAnalytics(ctx)
	if err != nil {
		h.log.Error("Failed to get exit survey analytics", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
