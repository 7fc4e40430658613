package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/bookvault-next/internal/http/handlers/shared"
	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// BookRequest 图书创建/更新请求
type BookRequest struct {
	Slug            string             `json:"slug" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	Description     string             `json:"description"`
	AuthorID        uint               `json:"author_id" binding:"required"`
	CategoryID      uint               `json:"category_id"`
	PricePerUnit    string             `json:"price_per_unit" binding:"required"`
	DiscountPercent int                `json:"discount_percent"`
	NumberInStock   int                `json:"number_in_stock"`
	Images          models.StringArray `json:"images"`
	Tags            models.StringArray `json:"tags"`
	IsActive        *bool              `json:"is_active"`
	SortOrder       int                `json:"sort_order"`
}

func (r BookRequest) toUpsertInput() (service.BookUpsertInput, error) {
	price, err := models.NewMoneyFromString(r.PricePerUnit)
	if err != nil {
		return service.BookUpsertInput{}, err
	}
	return service.BookUpsertInput{
		Slug:            strings.TrimSpace(r.Slug),
		Name:            strings.TrimSpace(r.Name),
		Description:     r.Description,
		AuthorID:        r.AuthorID,
		CategoryID:      r.CategoryID,
		PricePerUnit:    price,
		DiscountPercent: r.DiscountPercent,
		NumberInStock:   r.NumberInStock,
		Images:          r.Images,
		Tags:            r.Tags,
		IsActive:        r.IsActive,
		SortOrder:       r.SortOrder,
	}, nil
}

var adminBookErrorRules = []struct {
	target error
	code   int
	msg    string
}{
	{target: service.ErrInvalidBookInput, code: response.CodeBadRequest, msg: "invalid book input"},
	{target: service.ErrBookSlugExists, code: response.CodeBadRequest, msg: "book slug already exists"},
	{target: service.ErrAuthorNotFound, code: response.CodeBadRequest, msg: "author not found"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, msg: "category not found"},
	{target: service.ErrBookNotFound, code: response.CodeNotFound, msg: "book not found"},
}

func respondAdminBookError(c *gin.Context, err error, fallback string) {
	for _, rule := range adminBookErrorRules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallback, err)
}

// GetAdminBooks 管理端图书列表（含下架图书）
func (h *Handler) GetAdminBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	authorID, _ := strconv.ParseUint(c.Query("author_id"), 10, 64)

	books, total, err := h.BookService.List(repository.BookListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		AuthorID:   uint(authorID),
		Search:     strings.TrimSpace(c.Query("search")),
		WithAuthor: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "book list failed", err)
		return
	}
	response.SuccessWithPage(c, books, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetAdminBook 管理端图书详情
func (h *Handler) GetAdminBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid book id", nil)
		return
	}
	book, err := h.BookService.GetByID(uint(id))
	if err != nil {
		respondAdminBookError(c, err, "book fetch failed")
		return
	}
	response.Success(c, book)
}

// CreateBook 创建图书
func (h *Handler) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	input, err := req.toUpsertInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid price", nil)
		return
	}
	book, err := h.BookService.Create(input)
	if err != nil {
		respondAdminBookError(c, err, "book create failed")
		return
	}
	response.Success(c, book)
}

// UpdateBook 更新图书
func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid book id", nil)
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	input, err := req.toUpsertInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid price", nil)
		return
	}
	book, err := h.BookService.Update(uint(id), input)
	if err != nil {
		respondAdminBookError(c, err, "book update failed")
		return
	}
	response.Success(c, book)
}

// DeleteBook 删除图书
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid book id", nil)
		return
	}
	if err := h.BookService.Delete(uint(id)); err != nil {
		respondAdminBookError(c, err, "book delete failed")
		return
	}
	response.Success(c, nil)
}
