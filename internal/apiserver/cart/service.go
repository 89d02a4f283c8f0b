// Package cart 购物车引擎
//
// 维护每个用户的购物车行项：(user, variant) 至多一行，重复加购合并数量，
// 总价始终按变体的当前价格重算（不做加购时的价格快照）。
package cart

import (
	"context"
	"fmt"
	"log"
	"time"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/model"
)

// VariantStore 购物车所需的变体存储接口
type VariantStore interface {
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
}

// UserStore 购物车视图所需的用户存储接口
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// CartStore 购物车行项存储接口
type CartStore interface {
	CreateCartItem(ctx context.Context, item *model.CartItem) error
	GetCartItem(ctx context.Context, userID, variantID string) (*model.CartItem, error)
	ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int, totalPrice float64) error
	DeleteCartItem(ctx context.Context, id string) error
	DeleteCartItems(ctx context.Context, userID string) error
}

// Metrics 购物车指标挂钩（可选，nil 时跳过）
type Metrics interface {
	RecordCartMutation(operation string)
}

// Service 购物车业务逻辑
type Service struct {
	items    CartStore
	variants VariantStore
	users    UserStore
	metrics  Metrics // 可为 nil
}

// NewService 创建购物车服务
func NewService(items CartStore, variants VariantStore, users UserStore) *Service {
	return &Service{items: items, variants: variants, users: users}
}

// SetMetrics 挂接指标记录器（可选）
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

func (s *Service) recordMutation(operation string) {
	if s.metrics != nil {
		s.metrics.RecordCartMutation(operation)
	}
}

// GetCart 返回用户购物车视图
//
// 空购物车返回 Products 为空切片、Total=0 的视图，不报错。
func (s *Service) GetCart(ctx context.Context, userID string) (*model.UserCart, error) {
	items, err := s.items.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	cart := &model.UserCart{
		User:       user,
		Products:   make([]*model.ProductVariant, 0, len(items)),
		TotalItems: len(items),
	}
	for _, item := range items {
		variant, err := s.variants.GetVariant(ctx, item.ProductVariantID)
		if err != nil {
			return nil, fmt.Errorf("lookup variant %s: %w", item.ProductVariantID, err)
		}
		if variant != nil {
			cart.Products = append(cart.Products, variant)
		}
		cart.Total += item.TotalPrice
	}
	return cart, nil
}

// AddToCart 将变体加入购物车
//
// 已存在 (user, variant) 行时合并：委托给 UpdateQuantity 设置
// existing+qty，避免重复价格计算逻辑。
func (s *Service) AddToCart(ctx context.Context, userID, variantID string, quantity int) (*model.UserCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperr.ErrBadRequest)
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup variant: %w", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variant %s", apperr.ErrNotFound, variantID)
	}

	existing, err := s.items.GetCartItem(ctx, userID, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup cart item: %w", err)
	}

	if existing != nil {
		return s.UpdateQuantity(ctx, userID, variantID, existing.Quantity+quantity)
	}

	now := time.Now()
	item := &model.CartItem{
		ID:               generateID("cart"),
		UserID:           userID,
		ProductVariantID: variantID,
		Quantity:         quantity,
		TotalPrice:       variant.Price * float64(quantity),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.items.CreateCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	s.recordMutation("add")
	log.Printf("[cart] user %s added %dx variant %s", userID, quantity, variantID)
	return s.GetCart(ctx, userID)
}

// UpdateQuantity 设置行项数量（绝对值）
//
// 总价按变体的当前价格重算，不保留加购时的价格。
func (s *Service) UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (*model.UserCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperr.ErrBadRequest)
	}

	item, err := s.items.GetCartItem(ctx, userID, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup cart item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: variant %s not in cart", apperr.ErrNotFound, variantID)
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup variant: %w", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variant %s", apperr.ErrNotFound, variantID)
	}

	if err := s.items.UpdateCartItem(ctx, item.ID, quantity, variant.Price*float64(quantity)); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	s.recordMutation("update")
	return s.GetCart(ctx, userID)
}

// RemoveProduct 从购物车移除一个变体
func (s *Service) RemoveProduct(ctx context.Context, userID, variantID string) (*model.UserCart, error) {
	item, err := s.items.GetCartItem(ctx, userID, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup cart item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: variant %s not in cart", apperr.ErrNotFound, variantID)
	}

	if err := s.items.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}
	s.recordMutation("remove")
	return s.GetCart(ctx, userID)
}

// ClearCart 清空购物车（空购物车是无操作，不报错）
func (s *Service) ClearCart(ctx context.Context, userID string) (*model.UserCart, error) {
	if err := s.items.DeleteCartItems(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	s.recordMutation("clear")
	return s.GetCart(ctx, userID)
}
