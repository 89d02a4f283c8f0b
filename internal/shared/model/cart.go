package model

import "time"

// CartItem 购物车行项
//
// 每个 (UserID, ProductVariantID) 组合最多一行，重复加购时合并数量。
// TotalPrice = 变体单价 × Quantity，数量变更时按当前价格重算（不做价格快照）。
type CartItem struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	ProductVariantID string    `json:"product_variant_id" db:"product_variant_id"`
	Quantity         int       `json:"quantity" db:"quantity"`
	TotalPrice       float64   `json:"total_price" db:"total_price"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// UserCart 用户购物车视图
//
// 空购物车返回 Products 为空切片、Total=0，而不是错误；
// 未知用户时 User 为 nil。
type UserCart struct {
	User       *User             `json:"user"`
	Products   []*ProductVariant `json:"products"`
	TotalItems int               `json:"total_items"`
	Total      float64           `json:"total"`
}
