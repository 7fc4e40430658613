package models

import (
	"time"

	"gorm.io/gorm"
)

// Author 作者表
type Author struct {
	ID        uint           `gorm:"primarykey" json:"id"`          // 主键
	FirstName string         `gorm:"not null" json:"first_name"`    // 名
	LastName  string         `gorm:"not null;index" json:"last_name"` // 姓
	Bio       string         `gorm:"type:text" json:"bio"`            // 简介
	CreatedAt time.Time      `gorm:"index" json:"created_at"`       // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                // 软删除时间

	Books []Book `gorm:"foreignKey:AuthorID" json:"books,omitempty"` // 作品列表
}

// TableName 指定表名
func (Author) TableName() string {
	return "authors"
}

// FullName 返回作者全名
func (a *Author) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
