package public

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

// BookSummary 前台图书摘要
type BookSummary struct {
	ID                uint               `json:"id"`
	Slug              string             `json:"slug"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	PricePerUnit      models.Money       `json:"price_per_unit"`
	PriceWithDiscount models.Money       `json:"price_with_discount"`
	DiscountPercent   int                `json:"discount_percent"`
	NumberInStock     int                `json:"number_in_stock"`
	Images            models.StringArray `json:"images"`
	Tags              models.StringArray `json:"tags"`
	AuthorName        string             `json:"author_name"`
	CategoryName      string             `json:"category_name"`
}

func buildBookSummary(book *models.Book) BookSummary {
	summary := BookSummary{
		ID:                book.ID,
		Slug:              book.Slug,
		Name:              book.Name,
		Description:       book.Description,
		PricePerUnit:      book.PricePerUnit,
		PriceWithDiscount: book.PriceWithDiscount(),
		DiscountPercent:   book.DiscountPercent,
		NumberInStock:     book.NumberInStock,
		Images:            book.Images,
		Tags:              book.Tags,
	}
	if book.Author != nil {
		summary.AuthorName = book.Author.FullName()
	}
	if book.Category != nil {
		summary.CategoryName = book.Category.Name
	}
	return summary
}

// GetBooks 获取图书列表
func (h *Handler) GetBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	authorID, _ := strconv.ParseUint(c.Query("author_id"), 10, 64)

	filter := repository.BookListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		AuthorID:   uint(authorID),
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: true,
		InStock:    c.Query("in_stock") == "true",
		WithAuthor: true,
	}

	books, total, err := h.BookService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "book list failed", err)
		return
	}

	items := make([]BookSummary, 0, len(books))
	for i := range books {
		items = append(items, buildBookSummary(&books[i]))
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetBookBySlug 按 slug 获取上架图书
func (h *Handler) GetBookBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	book, err := h.BookService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, response.CodeNotFound, "book not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "book fetch failed", err)
		return
	}
	response.Success(c, buildBookSummary(book))
}

// GetAuthors 获取作者列表
func (h *Handler) GetAuthors(c *gin.Context) {
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

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, categories)
}
