package storage

import (
	"context"
	"time"

	"shop-admin/internal/shared/model"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserRole(ctx context.Context, id string, role model.UserRole) error
	UpdateUserProfile(ctx context.Context, id, username, email string) error
	SetRecoveryCode(ctx context.Context, email, code string, generatedAt time.Time) error
	ClearRecoveryCode(ctx context.Context, email string) error
	DeleteUser(ctx context.Context, id string) error
}

// LoginAuditStore 登录审计存储接口
type LoginAuditStore interface {
	CreateLoginAudit(ctx context.Context, audit *model.LoginAudit) error
	ListLoginAudits(ctx context.Context, userID string, limit int) ([]*model.LoginAudit, error)
}

// ProductStore 商品存储接口
type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// VariantStore 商品变体存储接口
type VariantStore interface {
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	ListVariants(ctx context.Context) ([]*model.ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID string) ([]*model.ProductVariant, error)
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error
	UpdateVariantStock(ctx context.Context, id string, stock int) error
	DeleteVariant(ctx context.Context, id string) error
}

// CartStore 购物车存储接口
type CartStore interface {
	CreateCartItem(ctx context.Context, item *model.CartItem) error
	GetCartItem(ctx context.Context, userID, variantID string) (*model.CartItem, error)
	ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int, totalPrice float64) error
	DeleteCartItem(ctx context.Context, id string) error
	DeleteCartItems(ctx context.Context, userID string) error
}

// StockLogStore 库存流水存储接口（只追加）
type StockLogStore interface {
	CreateStockLog(ctx context.Context, entry *model.HistoricStockLog) error
	ListStockLogs(ctx context.Context, variantID string, limit int) ([]*model.HistoricStockLog, error)
}

// CatalogStore 分类/尺码/颜色存储接口
type CatalogStore interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CreateVariantCategory(ctx context.Context, c *model.VariantCategory) error
	GetVariantCategory(ctx context.Context, id string) (*model.VariantCategory, error)
	ListVariantCategories(ctx context.Context) ([]*model.VariantCategory, error)
	CreateSize(ctx context.Context, size *model.Size) error
	ListSizes(ctx context.Context) ([]*model.Size, error)
	DeleteSize(ctx context.Context, id string) error
	CreateColor(ctx context.Context, color *model.Color) error
	ListColors(ctx context.Context) ([]*model.Color, error)
	DeleteColor(ctx context.Context, id string) error
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	LoginAuditStore
	ProductStore
	VariantStore
	CartStore
	StockLogStore
	CatalogStore
	Close() error
}
