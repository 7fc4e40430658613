package models

import (
	"time"
)

// ShoppingSession 购物车会话表（一个用户同时最多一个会话）
type ShoppingSession struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`       // 会话ID（UUID）
	UserID    *uint     `gorm:"uniqueIndex" json:"user_id,omitempty"` // 用户ID（游客会话为空）
	Total     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total"` // 购物车合计（冗余字段）
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`     // 过期时间
	CreatedAt time.Time `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                           // 更新时间

	Items []CartItem `gorm:"foreignKey:SessionID" json:"items,omitempty"` // 购物车项
	User  *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`     // 用户信息
}

// TableName 指定表名
func (ShoppingSession) TableName() string {
	return "shopping_sessions"
}

// Expired 判断会话是否已过期
func (s *ShoppingSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
