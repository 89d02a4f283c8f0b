package repository

import (
	"context"
	"database/sql"
	"time"

	"shop-admin/internal/shared/model"
)

const productColumns = `id, name, description, price, category_id, created_at, updated_at`

// CreateProduct 创建商品
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	query := s.rebind(`INSERT INTO products (id, name, description, price, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	_, err := s.q.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetProduct 获取商品
func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	query := s.rebind(`SELECT ` + productColumns + ` FROM products WHERE id = $1`)
	p := &model.Product{}
	err := s.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts 列出所有商品
func (s *Store) ListProducts(ctx context.Context) ([]*model.Product, error) {
	query := s.rebind(`SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p := &model.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct 更新商品
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := s.rebind(`UPDATE products SET name = $1, description = $2, price = $3, category_id = $4, updated_at = $5
		 WHERE id = $6`)
	_, err := s.q.ExecContext(ctx, query,
		p.Name, p.Description, p.Price, p.CategoryID, time.Now(), p.ID)
	return err
}

// DeleteProduct 删除商品（变体级联删除）
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM products WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}
