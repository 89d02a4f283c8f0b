package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/driver/sqlite"
	"shop-admin/internal/shared/storage/repository"
)

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	dialect := sqlite.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))

	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return NewService(store, store, store), store
}

func seedUser(t *testing.T, store *repository.Store, id string) *model.User {
	t.Helper()
	now := time.Now()
	user := &model.User{
		ID: id, Username: "user-" + id, Email: id + "@example.com",
		PasswordHash: "x", Role: model.UserRoleUser, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedVariant(t *testing.T, store *repository.Store, id string, price float64) *model.ProductVariant {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	product := &model.Product{ID: "prod-" + id, Name: "product", Price: price, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreateProduct(ctx, product))
	vc := &model.VariantCategory{ID: "vcat-" + id, Name: "size", CreatedAt: now}
	require.NoError(t, store.CreateVariantCategory(ctx, vc))

	variant := &model.ProductVariant{
		ID: id, Name: "variant", Price: price, Stock: 100, StockMin: 1,
		ProductID: product.ID, VariantCategoryID: vc.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateVariant(ctx, variant))
	return variant
}

func TestGetCartEmpty(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")

	cart, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, cart.Products)
	assert.Empty(t, cart.Products)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.Total)
}

func TestAddToCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	cart, err := svc.AddToCart(ctx, user.ID, variant.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 1, cart.TotalItems)
	assert.InDelta(t, 20.0, cart.Total, 1e-9)
	require.NotNil(t, cart.User)
	assert.Equal(t, user.ID, cart.User.ID)
}

func TestAddToCartMergesExistingLine(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	_, err := svc.AddToCart(ctx, user.ID, variant.ID, 2)
	require.NoError(t, err)

	// 同一变体再次加购：合并为一行，数量累加
	cart, err := svc.AddToCart(ctx, user.ID, variant.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.InDelta(t, 50.0, cart.Total, 1e-9)

	item, err := store.GetCartItem(ctx, user.ID, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
}

func TestAddToCartValidation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")

	_, err := svc.AddToCart(ctx, user.ID, "missing-variant", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	variant := seedVariant(t, store, "var-1", 10.0)
	_, err = svc.AddToCart(ctx, user.ID, variant.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	_, err = svc.AddToCart(ctx, user.ID, variant.ID, -2)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestUpdateQuantityUsesCurrentPrice(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	_, err := svc.AddToCart(ctx, user.ID, variant.ID, 2)
	require.NoError(t, err)

	// 变体涨价后更新数量：按当前价格重算，不保留加购时的价格
	variant.Price = 12.0
	require.NoError(t, store.UpdateVariant(ctx, variant))

	cart, err := svc.UpdateQuantity(ctx, user.ID, variant.ID, 3)
	require.NoError(t, err)
	assert.InDelta(t, 36.0, cart.Total, 1e-9)
}

func TestUpdateQuantityNotInCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	_, err := svc.UpdateQuantity(ctx, user.ID, variant.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveProduct(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	v1 := seedVariant(t, store, "var-1", 10.0)
	v2 := seedVariant(t, store, "var-2", 5.0)

	_, err := svc.AddToCart(ctx, user.ID, v1.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, v2.ID, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveProduct(ctx, user.ID, v1.ID)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, v2.ID, cart.Products[0].ID)
	assert.InDelta(t, 10.0, cart.Total, 1e-9)

	// 不在购物车里的变体
	_, err = svc.RemoveProduct(ctx, user.ID, v1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// fakeMetrics 记录指标调用，供测试断言
type fakeMetrics struct {
	operations []string
}

func (f *fakeMetrics) RecordCartMutation(operation string) {
	f.operations = append(f.operations, operation)
}

func TestCartMutationMetrics(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	fm := &fakeMetrics{}
	svc.SetMetrics(fm)

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	_, err := svc.AddToCart(ctx, user.ID, variant.ID, 1)
	require.NoError(t, err)
	// 合并加购走更新路径
	_, err = svc.AddToCart(ctx, user.ID, variant.ID, 2)
	require.NoError(t, err)
	_, err = svc.RemoveProduct(ctx, user.ID, variant.ID)
	require.NoError(t, err)
	_, err = svc.ClearCart(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"add", "update", "remove", "clear"}, fm.operations)
}

func TestClearCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, store, "usr-1")
	variant := seedVariant(t, store, "var-1", 10.0)

	_, err := svc.AddToCart(ctx, user.ID, variant.ID, 3)
	require.NoError(t, err)

	cart, err := svc.ClearCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Products)
	assert.Zero(t, cart.Total)

	// 清空空购物车是无操作
	_, err = svc.ClearCart(ctx, user.ID)
	require.NoError(t, err)
}
