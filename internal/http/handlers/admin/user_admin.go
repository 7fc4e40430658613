package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bookvault-next/internal/cache"
	handlershared "github.com/bookvault-next/internal/http/handlers/shared"
	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/repository"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserStatusRequest 用户状态变更请求
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user list failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetAdminUser 用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}
	user, err := h.UserService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	response.Success(c, user)
}

// UpdateAdminUserStatus 启用/禁用用户
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	user, err := h.UserService.SetStatus(uint(id), req.Status)
	if err == nil {
		if cerr := cache.DelUserAuthState(c.Request.Context(), uint(id)); cerr != nil {
			handlershared.RequestLog(c).Warnw("user_auth_state_invalidate_failed", "user_id", id, "error", cerr)
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserStatus):
			respondError(c, response.CodeBadRequest, "invalid user status", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "user status update failed", err)
		}
		return
	}
	response.Success(c, user)
}
