package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录（主键为提供方返回的支付ID）
type Payment struct {
	ID              string         `gorm:"primarykey" json:"id"`                      // 提供方支付ID
	SessionID       string         `gorm:"type:uuid;index;not null" json:"session_id"` // 购物车会话ID
	UserID          *uint          `gorm:"index" json:"user_id,omitempty"`            // 用户ID
	Provider        string         `gorm:"not null" json:"provider"`                  // 提供方（yookassa/wechat）
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"` // 支付金额
	Currency        string         `gorm:"not null" json:"currency"`                  // 币种
	Status          string         `gorm:"index;not null" json:"status"`              // 支付状态
	ConfirmationURL string         `gorm:"type:text" json:"confirmation_url"`         // 跳转链接
	Description     string         `gorm:"type:text" json:"description"`              // 支付描述
	ProviderPayload JSON           `gorm:"type:json" json:"provider_payload"`         // 提供方原始数据
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                // 更新时间
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`                      // 支付时间
	SettledAt       *time.Time     `gorm:"index" json:"settled_at"`                   // 结算时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
