package public

import (
	"github.com/bookvault-next/internal/constants"
	handlershared "github.com/bookvault-next/internal/http/handlers/shared"
	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/models"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// optionalUserID 读取可选的用户身份，游客返回 nil
func optionalUserID(c *gin.Context) *uint {
	value, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	if id, ok := value.(uint); ok && id > 0 {
		return &id
	}
	return nil
}

// resolveCartSession 通过 Cookie 解析购物车会话，必要时创建新会话
func (h *Handler) resolveCartSession(c *gin.Context) (*models.ShoppingSession, bool) {
	cookieSessionID, _ := c.Cookie(constants.ShoppingSessionCookieName)

	session, err := h.CartService.EnsureSession(cookieSessionID, optionalUserID(c))
	if err != nil {
		respondError(c, response.CodeInternal, "cart session unavailable", err)
		return nil, false
	}
	if session.ID != cookieSessionID {
		maxAge := int(h.CartService.SessionTTL().Seconds())
		c.SetCookie(constants.ShoppingSessionCookieName, session.ID, maxAge, "/", "", false, true)
	}
	return session, true
}

// currentCartSessionID 只读取 Cookie 中的会话 ID，不创建新会话
func currentCartSessionID(c *gin.Context) string {
	sessionID, _ := c.Cookie(constants.ShoppingSessionCookieName)
	return sessionID
}
