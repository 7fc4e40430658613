package repository

import (
	"errors"
	"strings"

	"github.com/bookvault-next/internal/models"

	"gorm.io/gorm"
)

// BookRepository 图书数据访问接口
type BookRepository interface {
	List(filter BookListFilter) ([]models.Book, int64, error)
	GetByID(id uint) (*models.Book, error)
	GetBySlug(slug string, onlyActive bool) (*models.Book, error)
	ListByIDs(ids []uint) ([]models.Book, error)
	Create(book *models.Book) error
	Update(book *models.Book) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	ReserveStock(bookID uint, quantity int) (int64, error)
	ReleaseStock(bookID uint, quantity int) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) BookRepository
}

// GormBookRepository GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓库
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookRepository) WithTx(tx *gorm.DB) BookRepository {
	if tx == nil {
		return r
	}
	return &GormBookRepository{db: tx}
}

// Transaction 执行事务
func (r *GormBookRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 图书列表
func (r *GormBookRepository) List(filter BookListFilter) ([]models.Book, int64, error) {
	var books []models.Book

	query := r.db.Model(&models.Book{})
	if filter.WithAuthor {
		query = query.Preload("Author").Preload("Category")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.InStock {
		query = query.Where("number_in_stock > 0")
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("sort_order DESC, created_at DESC").Find(&books).Error; err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// GetByID 按ID获取图书
func (r *GormBookRepository) GetByID(id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.Preload("Author").Preload("Category").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBySlug 按 slug 获取图书
func (r *GormBookRepository) GetBySlug(slug string, onlyActive bool) (*models.Book, error) {
	var book models.Book
	query := r.db.Preload("Author").Preload("Category").Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListByIDs 按ID批量获取图书
func (r *GormBookRepository) ListByIDs(ids []uint) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var books []models.Book
	if err := r.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Create 创建图书
func (r *GormBookRepository) Create(book *models.Book) error {
	return r.db.Create(book).Error
}

// Update 更新图书
func (r *GormBookRepository) Update(book *models.Book) error {
	return r.db.Save(book).Error
}

// Delete 删除图书（软删除）
func (r *GormBookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Book{}, id).Error
}

// CountBySlug 统计 slug 出现次数（用于唯一性校验）
func (r *GormBookRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Book{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReserveStock 预占库存（库存不足时影响行数为 0，库存永不为负）
func (r *GormBookRepository) ReserveStock(bookID uint, quantity int) (int64, error) {
	if bookID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock reserve params")
	}
	result := r.db.Model(&models.Book{}).
		Where("id = ? AND number_in_stock >= ?", bookID, quantity).
		Update("number_in_stock", gorm.Expr("number_in_stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseStock 释放库存占用
func (r *GormBookRepository) ReleaseStock(bookID uint, quantity int) (int64, error) {
	if bookID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock release params")
	}
	result := r.db.Model(&models.Book{}).
		Where("id = ?", bookID).
		Update("number_in_stock", gorm.Expr("number_in_stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
