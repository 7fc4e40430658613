package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book 图书表
type Book struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                            // 唯一标识
	Name            string         `gorm:"not null;index" json:"name"`                                  // 书名
	Description     string         `gorm:"type:text" json:"description"`                                // 简介
	AuthorID        uint           `gorm:"not null;index" json:"author_id"`                             // 作者ID
	CategoryID      uint           `gorm:"index" json:"category_id"`                                    // 分类ID
	PricePerUnit    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_per_unit"` // 单价
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`                  // 折扣百分比（0-100）
	NumberInStock   int            `gorm:"not null;default:0" json:"number_in_stock"`                   // 库存数量
	Images          StringArray    `gorm:"type:json" json:"images"`                                     // 封面图片
	Tags            StringArray    `gorm:"type:json" json:"tags"`                                       // 标签
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                         // 是否上架
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                           // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	Author   *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`     // 作者信息
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// PriceWithDiscount 计算折后价（保留 2 位小数）
func (b *Book) PriceWithDiscount() Money {
	if b.DiscountPercent <= 0 {
		return b.PricePerUnit
	}
	factor := decimal.NewFromInt(int64(100 - b.DiscountPercent)).Div(decimal.NewFromInt(100))
	return NewMoneyFromDecimal(b.PricePerUnit.Decimal.Mul(factor))
}
