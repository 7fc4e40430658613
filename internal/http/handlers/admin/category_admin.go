package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// GetAdminCategories 分类列表
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	category, err := h.CategoryService.Create(service.CategoryUpsertInput{
		Slug:      strings.TrimSpace(req.Slug),
		Name:      strings.TrimSpace(req.Name),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrCategorySlugExists) {
			respondError(c, response.CodeBadRequest, "category slug already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "category create failed", err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid category id", nil)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	category, err := h.CategoryService.Update(uint(id), service.CategoryUpsertInput{
		Slug:      strings.TrimSpace(req.Slug),
		Name:      strings.TrimSpace(req.Name),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategorySlugExists):
			respondError(c, response.CodeBadRequest, "category slug already exists", nil)
		default:
			respondError(c, response.CodeInternal, "category update failed", err)
		}
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（仍有图书时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid category id", nil)
		return
	}
	if err := h.CategoryService.Delete(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategoryHasBooks):
			respondError(c, response.CodeBadRequest, "category still has books", nil)
		default:
			respondError(c, response.CodeInternal, "category delete failed", err)
		}
		return
	}
	response.Success(c, nil)
}
