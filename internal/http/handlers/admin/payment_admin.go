package admin

import (
	"errors"
	"strings"

	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPayment 支付单详情
func (h *Handler) GetAdminPayment(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("id"))
	if paymentID == "" {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}
	payment, err := h.PaymentService.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	response.Success(c, payment)
}
