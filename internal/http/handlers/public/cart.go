package public

import (
	"strconv"

	"github.com/bookvault-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 加购请求
type CartLineRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// GetCart 获取当前购物车
func (h *Handler) GetCart(c *gin.Context) {
	session, ok := h.resolveCartSession(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(session.ID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartLine 向购物车添加图书
func (h *Handler) AddCartLine(c *gin.Context) {
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	session, ok := h.resolveCartSession(c)
	if !ok {
		return
	}
	view, err := h.CartService.AddLine(session.ID, req.BookID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartLine 从购物车移除图书，quantity 缺省时移除整行
func (h *Handler) RemoveCartLine(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 64)
	if err != nil || bookID == 0 {
		respondError(c, response.CodeBadRequest, "invalid book id", nil)
		return
	}
	quantity := 0
	if raw := c.Query("quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q <= 0 {
			respondError(c, response.CodeBadRequest, "invalid quantity", nil)
			return
		}
		quantity = q
	}

	sessionID := currentCartSessionID(c)
	view, err := h.CartService.RemoveLine(sessionID, uint(bookID), quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}
