package repository

import "time"

// BookListFilter 查询图书列表的过滤条件
type BookListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	AuthorID   uint
	Search     string
	OnlyActive bool
	InStock    bool
	WithAuthor bool
}

// AuthorListFilter 查询作者列表的过滤条件
type AuthorListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	PaymentID   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}
