package admin

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/bookvault-next/internal/cache"
	handlershared "github.com/bookvault-next/internal/http/handlers/shared"
	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetUserRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前操作者权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	userID, ok := handlershared.GetContextUint(c, "user_id")
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "authz fetch failed", err)
		return
	}
	policies, err := h.AuthzService.GetUserPolicies(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "authz fetch failed", err)
		return
	}

	isAdmin := false
	if value, exists := c.Get("user_is_admin"); exists {
		if flag, typeOK := value.(bool); typeOK {
			isAdmin = flag
		}
	}

	response.Success(c, gin.H{
		"user_id":  userID,
		"is_admin": isAdmin,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "authz fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role create failed", err)
		return
	}

	logger.Infow("admin_authz_role_created",
		"operator_user_id", operatorUserID(c),
		"role", role,
	)

	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "invalid role", nil)
		return
	}

	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "role delete failed", err)
		return
	}

	logger.Infow("admin_authz_role_deleted",
		"operator_user_id", operatorUserID(c),
		"role", role,
	)

	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "invalid role", nil)
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "authz fetch failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy grant failed", err)
		return
	}

	logger.Infow("admin_authz_policy_granted",
		"operator_user_id", operatorUserID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)

	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy revoke failed", err)
		return
	}

	logger.Infow("admin_authz_policy_revoked",
		"operator_user_id", operatorUserID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)

	response.Success(c, nil)
}

// GetAuthzUserRoles 获取用户角色
func (h *Handler) GetAuthzUserRoles(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}
	if _, err := h.UserService.GetByID(userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "authz fetch failed", err)
		return
	}

	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "authz fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzUserRoles 设置用户角色
func (h *Handler) SetAuthzUserRoles(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}
	user, err := h.UserService.GetByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "authz save failed", err)
		return
	}

	var req authzSetUserRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.SetUserRoles(userID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "roles update failed", err)
		return
	}
	if cerr := cache.DelUserAuthState(c.Request.Context(), userID); cerr != nil {
		handlershared.RequestLog(c).Warnw("user_auth_state_invalidate_failed", "user_id", userID, "error", cerr)
	}

	logger.Infow("admin_authz_user_roles_updated",
		"operator_user_id", operatorUserID(c),
		"target_user_id", userID,
		"target_email", user.Email,
		"roles", req.Roles,
	)

	response.Success(c, nil)
}

func parseUserIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return 0, false
	}
	return uint(id), true
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}

func operatorUserID(c *gin.Context) uint {
	value, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	if userID, ok := value.(uint); ok {
		return userID
	}
	return 0
}
