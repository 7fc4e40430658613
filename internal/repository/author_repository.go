package repository

import (
	"errors"
	"strings"

	"github.com/bookvault-next/internal/models"

	"gorm.io/gorm"
)

// AuthorRepository 作者数据访问接口
type AuthorRepository interface {
	List(filter AuthorListFilter) ([]models.Author, int64, error)
	GetByID(id uint) (*models.Author, error)
	Create(author *models.Author) error
	Update(author *models.Author) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) AuthorRepository
}

// GormAuthorRepository GORM 实现
type GormAuthorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓库
func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAuthorRepository) WithTx(tx *gorm.DB) AuthorRepository {
	if tx == nil {
		return r
	}
	return &GormAuthorRepository{db: tx}
}

// List 作者列表
func (r *GormAuthorRepository) List(filter AuthorListFilter) ([]models.Author, int64, error) {
	var authors []models.Author

	query := r.db.Model(&models.Author{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("last_name ASC, first_name ASC").Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	return authors, total, nil
}

// GetByID 按ID获取作者
func (r *GormAuthorRepository) GetByID(id uint) (*models.Author, error) {
	var author models.Author
	err := r.db.First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Create 创建作者
func (r *GormAuthorRepository) Create(author *models.Author) error {
	return r.db.Create(author).Error
}

// Update 更新作者
func (r *GormAuthorRepository) Update(author *models.Author) error {
	return r.db.Save(author).Error
}

// Delete 删除作者（软删除）
func (r *GormAuthorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Author{}, id).Error
}
