package public

import (
	"strings"

	"github.com/bookvault-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreatePayment 为当前购物车创建支付并返回收银台跳转地址
func (h *Handler) CreatePayment(c *gin.Context) {
	sessionID := currentCartSessionID(c)
	if sessionID == "" {
		respondError(c, response.CodeBadRequest, "cart session not found", nil)
		return
	}

	result, err := h.PaymentService.CreatePayment(c.Request.Context(), sessionID, c.ClientIP())
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payment_id":       result.Payment.ID,
		"status":           result.Payment.Status,
		"amount":           result.Payment.Amount,
		"currency":         result.Payment.Currency,
		"confirmation_url": result.ConfirmationURL,
	})
}

// GetPaymentStatus 查询支付状态
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("id"))
	status, err := h.PaymentService.GetStatus(c.Request.Context(), paymentID)
	if err != nil {
		respondPaymentStatusError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payment_id": paymentID,
		"status":     status,
	})
}
