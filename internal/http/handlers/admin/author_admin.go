package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/bookvault-next/internal/http/handlers/shared"
	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/repository"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthorRequest 作者创建/更新请求
type AuthorRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// GetAdminAuthors 作者列表
func (h *Handler) GetAdminAuthors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	authors, total, err := h.AuthorService.List(repository.AuthorListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "author list failed", err)
		return
	}
	response.SuccessWithPage(c, authors, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// CreateAuthor 创建作者
func (h *Handler) CreateAuthor(c *gin.Context) {
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	author, err := h.AuthorService.Create(service.AuthorUpsertInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Bio:       req.Bio,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "author create failed", err)
		return
	}
	response.Success(c, author)
}

// UpdateAuthor 更新作者
func (h *Handler) UpdateAuthor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid author id", nil)
		return
	}
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	author, err := h.AuthorService.Update(uint(id), service.AuthorUpsertInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, service.ErrAuthorNotFound) {
			respondError(c, response.CodeNotFound, "author not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "author update failed", err)
		return
	}
	response.Success(c, author)
}

// DeleteAuthor 删除作者（有在售图书时拒绝）
func (h *Handler) DeleteAuthor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid author id", nil)
		return
	}
	if err := h.AuthorService.Delete(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrAuthorNotFound):
			respondError(c, response.CodeNotFound, "author not found", nil)
		case errors.Is(err, service.ErrAuthorHasBooks):
			respondError(c, response.CodeBadRequest, "author still has books", nil)
		default:
			respondError(c, response.CodeInternal, "author delete failed", err)
		}
		return
	}
	response.Success(c, nil)
}
