package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/liyaqa/membership/internal/api/dto"
	ierr "github.com/liyaqa/membership/internal/errors"
	"github.com/liyaqa/membership/internal/logger"
	"github.com/liyaqa/membership/internal/service"
	"github.com/liyaqa/membership/internal/types"
)

type ContractHandler struct {
	service service.ContractService
	log     *logger.Logger
}

func NewContractHandler(service service.ContractService, log *logger.Logger) *ContractHandler {
	return &ContractHandler{service: service, log: log}
}

func (h *ContractHandler) CreateContract(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateContract(ctx, req)
	if err != nil {
		h.log.Error("Failed to create contract", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ContractHandler) SignContract(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.SignContract(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to sign contract", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) ApproveContract(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ApproveContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ApproveContract(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to approve contract", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) CancelWithinCoolingOff(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CoolingOffCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelWithinCoolingOff(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to cancel contract within cooling-off", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) ListContracts(c *gin.Context) {
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

	resp, err := h.service.ListContractsByStatus(ctx, types.ContractStatus(c.Query("status")), limit)
	if err != nil {
		h.log.Error("Failed to list contracts", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) GetContract(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetContract(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get contract", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) GetContractByNumber(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetContractByNumber(ctx, c.Param("number"))
	if err != nil {
		h.log.Error("Failed to get contract by number", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) ListMemberContracts(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListMemberContracts(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to list member contracts", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
