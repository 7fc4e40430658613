package service

import (
	"strings"

	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"
)

// CategoryService 分类服务
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	bookRepo     repository.BookRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo repository.CategoryRepository, bookRepo repository.BookRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		bookRepo:     bookRepo,
	}
}

// CategoryUpsertInput 分类创建/更新输入
type CategoryUpsertInput struct {
	Slug      string
	Name      string
	SortOrder int
}

// ListAll 全部分类
func (s *CategoryService) ListAll() ([]models.Category, error) {
	return s.categoryRepo.ListAll()
}

// GetByID 获取分类
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, ErrCategoryNotFound
	}
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryUpsertInput) (*models.Category, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidBookInput
	}
	exist, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCategorySlugExists
	}
	category := &models.Category{
		Slug:      slug,
		Name:      name,
		SortOrder: input.SortOrder,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryUpsertInput) (*models.Category, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidBookInput
	}
	if slug != category.Slug {
		exist, err := s.categoryRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if exist != nil && exist.ID != category.ID {
			return nil, ErrCategorySlugExists
		}
	}
	category.Slug = slug
	category.Name = name
	category.SortOrder = input.SortOrder
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类（分类下仍有图书时拒绝）
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	_, total, err := s.bookRepo.List(repository.BookListFilter{CategoryID: id, Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrCategoryHasBooks
	}
	return s.categoryRepo.Delete(id)
}
