package models

import (
	"time"
)

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                          // 主键
	SessionID string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_session_book" json:"session_id"` // 会话ID
	BookID    uint      `gorm:"not null;uniqueIndex:idx_cart_session_book" json:"book_id"`     // 图书ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                      // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`       // 加购时折后单价快照
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                       // 更新时间

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // 关联图书
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal 计算该项小计
func (c *CartItem) LineTotal() Money {
	return NewMoneyFromDecimal(c.UnitPrice.Decimal.Mul(intToDecimal(c.Quantity)))
}
