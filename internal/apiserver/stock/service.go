// Package stock 库存引擎
//
// 所有库存变更都在事务里完成：先改变体库存，再写一条只追加的
// 台账记录，两者同生共死。库存允许为负（超卖由上层对账处理）。
package stock

import (
	"context"
	"fmt"
	"log"
	"time"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/repository"
)

// Metrics 库存指标挂钩（可选，nil 时跳过）
type Metrics interface {
	RecordStockMovement(direction string)
}

// Service 库存业务逻辑
type Service struct {
	store   *repository.Store
	metrics Metrics // 可为 nil
}

// NewService 创建库存服务
func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

// SetMetrics 挂接指标记录器（可选）
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// AddStock 入库
//
// quantity 必须为正，否则返回 ErrBadRequest。
func (s *Service) AddStock(ctx context.Context, variantID string, quantity int, reason *string) (*model.ProductVariant, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrBadRequest)
	}
	return s.adjust(ctx, variantID, quantity, true, reason)
}

// RemoveStock 出库
//
// quantity <= 0 时默认扣 1。库存可以降到负数。
func (s *Service) RemoveStock(ctx context.Context, variantID string, quantity int, reason *string) (*model.ProductVariant, error) {
	if quantity <= 0 {
		quantity = 1
	}
	return s.adjust(ctx, variantID, quantity, false, reason)
}

func (s *Service) adjust(ctx context.Context, variantID string, quantity int, ingress bool, reason *string) (*model.ProductVariant, error) {
	var updated *model.ProductVariant
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		variant, err := tx.GetVariant(ctx, variantID)
		if err != nil {
			return fmt.Errorf("lookup variant: %w", err)
		}
		if variant == nil {
			return fmt.Errorf("%w: variant %s", apperr.ErrNotFound, variantID)
		}

		newStock := variant.Stock + quantity
		if !ingress {
			newStock = variant.Stock - quantity
		}
		if err := tx.UpdateVariantStock(ctx, variantID, newStock); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		entry := &model.HistoricStockLog{
			ID:               generateID("stk"),
			ProductVariantID: variantID,
			IsIngress:        ingress,
			Quantity:         quantity,
			Reason:           reason,
			CreatedAt:        time.Now(),
		}
		if err := tx.CreateStockLog(ctx, entry); err != nil {
			return fmt.Errorf("write stock log: %w", err)
		}

		variant.Stock = newStock
		updated = variant
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if ingress {
			s.metrics.RecordStockMovement("ingress")
		} else {
			s.metrics.RecordStockMovement("egress")
		}
	}

	direction := "added to"
	if !ingress {
		direction = "removed from"
	}
	log.Printf("[stock] %d units %s variant %s (stock now %d)", quantity, direction, variantID, updated.Stock)
	if updated.BelowMinimum() {
		log.Printf("[stock] variant %s below minimum stock (%d < %d)", variantID, updated.Stock, updated.StockMin)
	}
	return updated, nil
}

// History 返回某变体的库存台账（按时间倒序）
func (s *Service) History(ctx context.Context, variantID string, limit int) ([]*model.HistoricStockLog, error) {
	variant, err := s.store.GetVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("lookup variant: %w", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variant %s", apperr.ErrNotFound, variantID)
	}
	return s.store.ListStockLogs(ctx, variantID, limit)
}
