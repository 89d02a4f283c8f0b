package repository

import (
	"context"
	"database/sql"
	"time"

	"shop-admin/internal/shared/model"
)

const variantColumns = `id, name, description, price, stock, stock_min, product_id, variant_category_id, created_at, updated_at`

// CreateVariant 创建商品变体
func (s *Store) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	query := s.rebind(`INSERT INTO product_variants
		 (id, name, description, price, stock, stock_min, product_id, variant_category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	_, err := s.q.ExecContext(ctx, query,
		v.ID, v.Name, v.Description, v.Price, v.Stock, v.StockMin,
		v.ProductID, v.VariantCategoryID, v.CreatedAt, v.UpdatedAt)
	return err
}

// GetVariant 获取商品变体
func (s *Store) GetVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	query := s.rebind(`SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`)
	return scanVariant(s.q.QueryRowContext(ctx, query, id))
}

// ListVariants 列出所有变体
func (s *Store) ListVariants(ctx context.Context) ([]*model.ProductVariant, error) {
	query := s.rebind(`SELECT ` + variantColumns + ` FROM product_variants ORDER BY created_at DESC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVariants(rows)
}

// ListVariantsByProduct 列出某商品下的所有变体
func (s *Store) ListVariantsByProduct(ctx context.Context, productID string) ([]*model.ProductVariant, error) {
	query := s.rebind(`SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY created_at DESC`)
	rows, err := s.q.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVariants(rows)
}

// UpdateVariant 更新变体基础字段（不含库存）
func (s *Store) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	query := s.rebind(`UPDATE product_variants SET name = $1, description = $2, price = $3, stock_min = $4, updated_at = $5
		 WHERE id = $6`)
	_, err := s.q.ExecContext(ctx, query,
		v.Name, v.Description, v.Price, v.StockMin, time.Now(), v.ID)
	return err
}

// UpdateVariantStock 设置变体库存绝对值
// 库存变更只应经由库存台账（stock 包）调用，以保证流水完整
func (s *Store) UpdateVariantStock(ctx context.Context, id string, stock int) error {
	query := s.rebind(`UPDATE product_variants SET stock = $1, updated_at = $2 WHERE id = $3`)
	_, err := s.q.ExecContext(ctx, query, stock, time.Now(), id)
	return err
}

// DeleteVariant 删除变体
func (s *Store) DeleteVariant(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM product_variants WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}

// scanVariant 辅助函数
func scanVariant(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.ProductVariant, error) {
	v := &model.ProductVariant{}
	err := scanner.Scan(
		&v.ID, &v.Name, &v.Description, &v.Price, &v.Stock, &v.StockMin,
		&v.ProductID, &v.VariantCategoryID, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// scanVariants 批量扫描
func scanVariants(rows *sql.Rows) ([]*model.ProductVariant, error) {
	var variants []*model.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}
