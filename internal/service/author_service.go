package service

import (
	"strings"

	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"
)

// AuthorService 作者服务
type AuthorService struct {
	authorRepo repository.AuthorRepository
	bookRepo   repository.BookRepository
}

// NewAuthorService 创建作者服务
func NewAuthorService(authorRepo repository.AuthorRepository, bookRepo repository.BookRepository) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		bookRepo:   bookRepo,
	}
}

// AuthorUpsertInput 作者创建/更新输入
type AuthorUpsertInput struct {
	FirstName string
	LastName  string
	Bio       string
}

// List 作者列表
func (s *AuthorService) List(filter repository.AuthorListFilter) ([]models.Author, int64, error) {
	return s.authorRepo.List(filter)
}

// GetByID 获取作者
func (s *AuthorService) GetByID(id uint) (*models.Author, error) {
	if id == 0 {
		return nil, ErrAuthorNotFound
	}
	author, err := s.authorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrAuthorNotFound
	}
	return author, nil
}

// Create 创建作者
func (s *AuthorService) Create(input AuthorUpsertInput) (*models.Author, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, ErrInvalidBookInput
	}
	author := &models.Author{
		FirstName: firstName,
		LastName:  strings.TrimSpace(input.LastName),
		Bio:       strings.TrimSpace(input.Bio),
	}
	if err := s.authorRepo.Create(author); err != nil {
		return nil, err
	}
	return author, nil
}

// Update 更新作者
func (s *AuthorService) Update(id uint, input AuthorUpsertInput) (*models.Author, error) {
	author, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, ErrInvalidBookInput
	}
	author.FirstName = firstName
	author.LastName = strings.TrimSpace(input.LastName)
	author.Bio = strings.TrimSpace(input.Bio)
	if err := s.authorRepo.Update(author); err != nil {
		return nil, err
	}
	return author, nil
}

// Delete 删除作者（名下仍有图书时拒绝）
func (s *AuthorService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	_, total, err := s.bookRepo.List(repository.BookListFilter{AuthorID: id, Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrAuthorHasBooks
	}
	return s.authorRepo.Delete(id)
}
