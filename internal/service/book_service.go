package service

import (
	"strings"

	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"
)

// BookService 图书服务
type BookService struct {
	bookRepo     repository.BookRepository
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
}

// NewBookService 创建图书服务
func NewBookService(bookRepo repository.BookRepository, authorRepo repository.AuthorRepository, categoryRepo repository.CategoryRepository) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
	}
}

// BookUpsertInput 图书创建/更新输入
type BookUpsertInput struct {
	Slug            string
	Name            string
	Description     string
	AuthorID        uint
	CategoryID      uint
	PricePerUnit    models.Money
	DiscountPercent int
	NumberInStock   int
	Images          []string
	Tags            []string
	IsActive        *bool
	SortOrder       int
}

// List 图书列表
func (s *BookService) List(filter repository.BookListFilter) ([]models.Book, int64, error) {
	return s.bookRepo.List(filter)
}

// GetByID 获取图书
func (s *BookService) GetByID(id uint) (*models.Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// GetBySlug 按 slug 获取上架图书
func (s *BookService) GetBySlug(slug string) (*models.Book, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrBookNotFound
	}
	book, err := s.bookRepo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// Create 创建图书
func (s *BookService) Create(input BookUpsertInput) (*models.Book, error) {
	if err := s.validateUpsert(&input, nil); err != nil {
		return nil, err
	}

	book := &models.Book{
		Slug:            input.Slug,
		Name:            input.Name,
		Description:     input.Description,
		AuthorID:        input.AuthorID,
		CategoryID:      input.CategoryID,
		PricePerUnit:    input.PricePerUnit,
		DiscountPercent: input.DiscountPercent,
		NumberInStock:   input.NumberInStock,
		Images:          input.Images,
		Tags:            input.Tags,
		IsActive:        true,
		SortOrder:       input.SortOrder,
	}
	if input.IsActive != nil {
		book.IsActive = *input.IsActive
	}
	if err := s.bookRepo.Create(book); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(book.ID)
}

// Update 更新图书
func (s *BookService) Update(id uint, input BookUpsertInput) (*models.Book, error) {
	book, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateUpsert(&input, &id); err != nil {
		return nil, err
	}

	book.Slug = input.Slug
	book.Name = input.Name
	book.Description = input.Description
	book.AuthorID = input.AuthorID
	book.CategoryID = input.CategoryID
	book.PricePerUnit = input.PricePerUnit
	book.DiscountPercent = input.DiscountPercent
	book.NumberInStock = input.NumberInStock
	book.Images = input.Images
	book.Tags = input.Tags
	book.SortOrder = input.SortOrder
	if input.IsActive != nil {
		book.IsActive = *input.IsActive
	}
	if err := s.bookRepo.Update(book); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(book.ID)
}

// Delete 删除图书
func (s *BookService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.bookRepo.Delete(id)
}

func (s *BookService) validateUpsert(input *BookUpsertInput, excludeID *uint) error {
	input.Slug = strings.TrimSpace(input.Slug)
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" || input.AuthorID == 0 {
		return ErrInvalidBookInput
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return ErrInvalidBookInput
	}
	if input.NumberInStock < 0 {
		return ErrInvalidBookInput
	}

	count, err := s.bookRepo.CountBySlug(input.Slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBookSlugExists
	}

	author, err := s.authorRepo.GetByID(input.AuthorID)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrAuthorNotFound
	}

	if input.CategoryID != 0 {
		category, err := s.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
	}
	return nil
}
