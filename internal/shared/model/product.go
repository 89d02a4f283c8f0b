// Package model 定义核心数据模型
package model

import "time"

// Product 商品（变体的归属实体）
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  *string   `json:"category_id,omitempty" db:"category_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductVariant 商品变体（可售 SKU）
//
// Stock 只能通过库存台账（stock 包）修改，不提供直接写入口。
// Stock 允许为负：扣减前的余量校验由调用方负责。
type ProductVariant struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description,omitempty" db:"description"`
	Price             float64   `json:"price" db:"price"`
	Stock             int       `json:"stock" db:"stock"`
	StockMin          int       `json:"stock_min" db:"stock_min"`
	ProductID         string    `json:"product_id" db:"product_id"`
	VariantCategoryID string    `json:"variant_category_id" db:"variant_category_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// BelowMinimum 库存是否低于最低警戒线
func (v *ProductVariant) BelowMinimum() bool {
	return v.Stock < v.StockMin
}

// Category 商品分类
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VariantCategory 变体分类（如"颜色"、"尺码"）
type VariantCategory struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Size 尺码
type Size struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Color 颜色
type Color struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Hex  string `json:"hex,omitempty" db:"hex"`
}
