package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（结算成功后由购物车生成）
type Order struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`                          // 主键（预分配 UUID）
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`                          // 用户ID（游客订单为空）
	PaymentID string         `gorm:"uniqueIndex;not null" json:"payment_id"`                  // 支付记录ID
	Status    string         `gorm:"index;not null" json:"status"`                            // 订单状态
	TotalSum  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_sum"`  // 订单总额（取支付金额）
	Currency  string         `gorm:"not null" json:"currency"`                                // 币种
	OrderDate time.Time      `gorm:"index" json:"order_date"`                                 // 下单时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 用户信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
