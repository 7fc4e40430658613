package public

import (
	"errors"
	"strings"

	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取当前用户的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID := strings.TrimSpace(c.Param("id"))
	order, err := h.OrderService.GetByID(orderID, &uid, false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "order access denied", nil)
		default:
			respondError(c, response.CodeInternal, "order fetch failed", err)
		}
		return
	}
	response.Success(c, order)
}
