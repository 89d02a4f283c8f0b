package repository

import (
	"context"
	"database/sql"

	"shop-admin/internal/shared/model"
)

// ============================================================================
// Category
// ============================================================================

// CreateCategory 创建商品分类
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	query := s.rebind(`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`)
	_, err := s.q.ExecContext(ctx, query, c.ID, c.Name, c.CreatedAt)
	return err
}

// GetCategory 获取商品分类
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	query := s.rebind(`SELECT id, name, created_at FROM categories WHERE id = $1`)
	c := &model.Category{}
	err := s.q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories 列出所有商品分类
func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	query := s.rebind(`SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory 更新商品分类
func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	query := s.rebind(`UPDATE categories SET name = $1 WHERE id = $2`)
	_, err := s.q.ExecContext(ctx, query, c.Name, c.ID)
	return err
}

// DeleteCategory 删除商品分类
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM categories WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}

// ============================================================================
// VariantCategory
// ============================================================================

// CreateVariantCategory 创建变体分类
func (s *Store) CreateVariantCategory(ctx context.Context, c *model.VariantCategory) error {
	query := s.rebind(`INSERT INTO variant_categories (id, name, created_at) VALUES ($1, $2, $3)`)
	_, err := s.q.ExecContext(ctx, query, c.ID, c.Name, c.CreatedAt)
	return err
}

// GetVariantCategory 获取变体分类
func (s *Store) GetVariantCategory(ctx context.Context, id string) (*model.VariantCategory, error) {
	query := s.rebind(`SELECT id, name, created_at FROM variant_categories WHERE id = $1`)
	c := &model.VariantCategory{}
	err := s.q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListVariantCategories 列出所有变体分类
func (s *Store) ListVariantCategories(ctx context.Context) ([]*model.VariantCategory, error) {
	query := s.rebind(`SELECT id, name, created_at FROM variant_categories ORDER BY name ASC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*model.VariantCategory
	for rows.Next() {
		c := &model.VariantCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ============================================================================
// Size / Color
// ============================================================================

// CreateSize 创建尺码
func (s *Store) CreateSize(ctx context.Context, size *model.Size) error {
	query := s.rebind(`INSERT INTO sizes (id, name) VALUES ($1, $2)`)
	_, err := s.q.ExecContext(ctx, query, size.ID, size.Name)
	return err
}

// ListSizes 列出所有尺码
func (s *Store) ListSizes(ctx context.Context) ([]*model.Size, error) {
	query := s.rebind(`SELECT id, name FROM sizes ORDER BY name ASC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []*model.Size
	for rows.Next() {
		size := &model.Size{}
		if err := rows.Scan(&size.ID, &size.Name); err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, rows.Err()
}

// DeleteSize 删除尺码
func (s *Store) DeleteSize(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM sizes WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}

// CreateColor 创建颜色
func (s *Store) CreateColor(ctx context.Context, color *model.Color) error {
	query := s.rebind(`INSERT INTO colors (id, name, hex) VALUES ($1, $2, $3)`)
	_, err := s.q.ExecContext(ctx, query, color.ID, color.Name, color.Hex)
	return err
}

// ListColors 列出所有颜色
func (s *Store) ListColors(ctx context.Context) ([]*model.Color, error) {
	query := s.rebind(`SELECT id, name, hex FROM colors ORDER BY name ASC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []*model.Color
	for rows.Next() {
		color := &model.Color{}
		if err := rows.Scan(&color.ID, &color.Name, &color.Hex); err != nil {
			return nil, err
		}
		colors = append(colors, color)
	}
	return colors, rows.Err()
}

// DeleteColor 删除颜色
func (s *Store) DeleteColor(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM colors WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}
