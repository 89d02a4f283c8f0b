package model

import "time"

// HistoricStockLog 库存流水（只追加，永不修改或删除）
//
// IsIngress=true 为入库，false 为出库。每次库存变动恰好产生一条流水。
type HistoricStockLog struct {
	ID               string    `json:"id" db:"id"`
	ProductVariantID string    `json:"product_variant_id" db:"product_variant_id"`
	IsIngress        bool      `json:"is_ingress" db:"is_ingress"`
	Quantity         int       `json:"quantity" db:"quantity"`
	Reason           *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
