package handlers

import (
	"net/http"

	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditRepublishHandler struct {
	service service.AuditRepublishServiceInterface
}

func NewAuditRepublishHandler(service service.AuditRepublishServiceInterface) *AuditRepublishHandler {
	return &AuditRepublishHandler{
		service: service,
	}
}

func (h *AuditRepublishHandler) RepublishAuditMessages(c *gin.Context) {
	response := h.service.RepublishAuditMessages(c.Request.Context())

	if response.ErrorMsg == "" {
		if len(response.SuccessIDs) == 0 && len(response.FailedIDs) == 0 {
			response.Message = log_messages.NoUnpublishedRecordsInDuration
		}

		c.JSON(http.StatusOK, response)
		return
	}

	if len(response.SuccessIDs) > 0 {
		c.JSON(http.StatusOK, response)
		return
	}

	c.JSON(http.StatusInternalServerError, response)
}
