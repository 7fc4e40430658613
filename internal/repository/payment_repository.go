package repository

import (
	"errors"
	"time"

	"github.com/bookvault-next/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	Updates(paymentID string, updates map[string]interface{}) error
	MarkSettled(paymentID string, updates map[string]interface{}) (int64, error)
	GetByID(id string) (*models.Payment, error)
	GetBySessionID(sessionID string) (*models.Payment, error)
	ListNonTerminal(olderThan time.Time, limit int) ([]models.Payment, error)
	WithTx(tx *gorm.DB) PaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// Updates 按字段更新支付记录
func (r *GormPaymentRepository) Updates(paymentID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Payment{}).Where("id = ?", paymentID).Updates(updates).Error
}

// MarkSettled 结算关单：仅当该支付尚未结算时生效，返回影响行数
// 影响行数为 0 说明已被其他结算方关闭
func (r *GormPaymentRepository) MarkSettled(paymentID string, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.Payment{}).
		Where("id = ? AND settled_at IS NULL", paymentID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// GetByID 按ID获取支付记录
func (r *GormPaymentRepository) GetByID(id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetBySessionID 按会话ID获取最近一笔支付
func (r *GormPaymentRepository) GetBySessionID(sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC").First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListNonTerminal 列出仍在进行中的支付（用于重启后恢复轮询）
func (r *GormPaymentRepository) ListNonTerminal(olderThan time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	query := r.db.Where("status IN ?", []string{"initiated", "pending"}).
		Where("created_at <= ?", olderThan).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
