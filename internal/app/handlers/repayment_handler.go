package handlers

import (
	"errors"
	"net/http"

	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/models"
	"repayment-worker/internal/service/repayment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RepaymentHandler struct {
	service repayment.RepaymentServiceInterface
}

func NewRepaymentHandler(service repayment.RepaymentServiceInterface) *RepaymentHandler {
	return &RepaymentHandler{
		service: service,
	}
}

// PostRepayment handles POST /loans/:loanId/repayments, the back-office
// entry point into the allocation engine.
func (h *RepaymentHandler) PostRepayment(c *gin.Context) {
	loanID := c.Param("loanId")
	ctx := logger.WithTraceID(c.Request.Context(), uuid.New().String())

	var req models.ManualRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.CtxInfo(ctx, "Manual repayment request received")

	resp, err := h.service.ManualRepayment(ctx, loanID, &req)
	if err != nil {
		switch {
		case errors.Is(err, repayment.ErrLoanLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repayment.ErrPaymentNotApplied):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLedger handles GET /loans/:loanId/ledger and returns the loan's full
// allocation history.
func (h *RepaymentHandler) GetLedger(c *gin.Context) {
	loanID := c.Param("loanId")
	ctx := logger.WithTraceID(c.Request.Context(), uuid.New().String())

	records, err := h.service.GetLedger(ctx, loanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loanId":  loanID,
		"count":   len(records),
		"records": records,
	})
}
