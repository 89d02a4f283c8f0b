package repository

import (
	"context"

	"shop-admin/internal/shared/model"
)

// CreateStockLog 追加一条库存流水
// 表为只追加设计：没有对应的 UPDATE/DELETE 方法
func (s *Store) CreateStockLog(ctx context.Context, entry *model.HistoricStockLog) error {
	query := s.rebind(`INSERT INTO historic_stock_logs (id, product_variant_id, is_ingress, quantity, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	_, err := s.q.ExecContext(ctx, query,
		entry.ID, entry.ProductVariantID, entry.IsIngress, entry.Quantity, entry.Reason, entry.CreatedAt)
	return err
}

// ListStockLogs 列出某变体的库存流水，按时间倒序
func (s *Store) ListStockLogs(ctx context.Context, variantID string, limit int) ([]*model.HistoricStockLog, error) {
	query := s.rebind(`SELECT id, product_variant_id, is_ingress, quantity, reason, created_at
		 FROM historic_stock_logs WHERE product_variant_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`)
	rows, err := s.q.QueryContext(ctx, query, variantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.HistoricStockLog
	for rows.Next() {
		e := &model.HistoricStockLog{}
		if err := rows.Scan(&e.ID, &e.ProductVariantID, &e.IsIngress, &e.Quantity,
			&e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
