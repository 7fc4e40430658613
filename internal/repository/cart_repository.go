package repository

import (
	"errors"
	"time"

	"github.com/bookvault-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口（会话 + 购物车项）
type CartRepository interface {
	CreateSession(session *models.ShoppingSession) error
	GetSessionByID(id string) (*models.ShoppingSession, error)
	GetSessionByUser(userID uint) (*models.ShoppingSession, error)
	UpdateSession(session *models.ShoppingSession) error
	AddSessionTotal(sessionID string, delta models.Money) error
	DeleteSession(sessionID string) error
	ListExpiredSessions(before time.Time, limit int) ([]models.ShoppingSession, error)
	ListItems(sessionID string) ([]models.CartItem, error)
	GetItem(sessionID string, bookID uint) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(sessionID string, bookID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// CreateSession 创建购物车会话
func (r *GormCartRepository) CreateSession(session *models.ShoppingSession) error {
	return r.db.Create(session).Error
}

// GetSessionByID 按ID获取会话
func (r *GormCartRepository) GetSessionByID(id string) (*models.ShoppingSession, error) {
	var session models.ShoppingSession
	err := r.db.Preload("User").Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionByUser 获取用户当前会话（一个用户同时最多一个）
func (r *GormCartRepository) GetSessionByUser(userID uint) (*models.ShoppingSession, error) {
	var session models.ShoppingSession
	err := r.db.Where("user_id = ?", userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession 更新会话
func (r *GormCartRepository) UpdateSession(session *models.ShoppingSession) error {
	return r.db.Save(session).Error
}

// AddSessionTotal 增量更新会话合计（delta 可为负）
func (r *GormCartRepository) AddSessionTotal(sessionID string, delta models.Money) error {
	return r.db.Model(&models.ShoppingSession{}).
		Where("id = ?", sessionID).
		Update("total", gorm.Expr("total + ?", delta)).Error
}

// DeleteSession 删除会话及其所有购物车项
func (r *GormCartRepository) DeleteSession(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", sessionID).Delete(&models.ShoppingSession{}).Error
}

// ListExpiredSessions 列出已过期会话
func (r *GormCartRepository) ListExpiredSessions(before time.Time, limit int) ([]models.ShoppingSession, error) {
	var sessions []models.ShoppingSession
	query := r.db.Where("expires_at <= ?", before).Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListItems 获取会话的购物车项
func (r *GormCartRepository) ListItems(sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Book").Where("session_id = ?", sessionID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取单个购物车项
func (r *GormCartRepository) GetItem(sessionID string, bookID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("session_id = ? AND book_id = ?", sessionID, bookID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建购物车项
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新购物车项
func (r *GormCartRepository) UpdateItem(item *models.CartItem) error {
	return r.db.Save(item).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(sessionID string, bookID uint) error {
	return r.db.Where("session_id = ? AND book_id = ?", sessionID, bookID).Delete(&models.CartItem{}).Error
}
