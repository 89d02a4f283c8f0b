package repository

import (
	"context"
	"database/sql"
	"time"

	"shop-admin/internal/shared/model"
)

const cartColumns = `id, user_id, product_variant_id, quantity, total_price, created_at, updated_at`

// CreateCartItem 插入购物车行项
func (s *Store) CreateCartItem(ctx context.Context, item *model.CartItem) error {
	query := s.rebind(`INSERT INTO cart_items (id, user_id, product_variant_id, quantity, total_price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	_, err := s.q.ExecContext(ctx, query,
		item.ID, item.UserID, item.ProductVariantID, item.Quantity, item.TotalPrice,
		item.CreatedAt, item.UpdatedAt)
	return err
}

// GetCartItem 查找 (user, variant) 对应的行项
func (s *Store) GetCartItem(ctx context.Context, userID, variantID string) (*model.CartItem, error) {
	query := s.rebind(`SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND product_variant_id = $2`)
	item := &model.CartItem{}
	err := s.q.QueryRowContext(ctx, query, userID, variantID).Scan(
		&item.ID, &item.UserID, &item.ProductVariantID, &item.Quantity, &item.TotalPrice,
		&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListCartItems 列出用户购物车的所有行项
func (s *Store) ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error) {
	query := s.rebind(`SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at ASC`)
	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		item := &model.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductVariantID,
			&item.Quantity, &item.TotalPrice, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateCartItem 更新行项的数量和总价
func (s *Store) UpdateCartItem(ctx context.Context, id string, quantity int, totalPrice float64) error {
	query := s.rebind(`UPDATE cart_items SET quantity = $1, total_price = $2, updated_at = $3 WHERE id = $4`)
	_, err := s.q.ExecContext(ctx, query, quantity, totalPrice, time.Now(), id)
	return err
}

// DeleteCartItem 删除单个行项
func (s *Store) DeleteCartItem(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM cart_items WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}

// DeleteCartItems 清空用户购物车（空购物车是无操作，不报错）
func (s *Store) DeleteCartItems(ctx context.Context, userID string) error {
	query := s.rebind(`DELETE FROM cart_items WHERE user_id = $1`)
	_, err := s.q.ExecContext(ctx, query, userID)
	return err
}
