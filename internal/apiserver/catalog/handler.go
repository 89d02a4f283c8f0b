// Package catalog 商品目录接口
//
// 商品、变体、分类、尺码、颜色的维护操作。目录数据是库存和购物车
// 的引用对象：写操作在落库前做引用检查（商品存在才允许建变体等）。
package catalog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"shop-admin/internal/shared/model"
)

// Store 目录所需的存储接口
type Store interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	ListVariants(ctx context.Context) ([]*model.ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID string) ([]*model.ProductVariant, error)
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error
	DeleteVariant(ctx context.Context, id string) error

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

// Handler 目录 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建目录处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册目录路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/products", h.ListProducts)
	mux.HandleFunc("POST /api/v1/products", h.CreateProduct)
	mux.HandleFunc("GET /api/v1/products/{id}", h.GetProduct)
	mux.HandleFunc("PATCH /api/v1/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/v1/products/{id}", h.DeleteProduct)
	mux.HandleFunc("GET /api/v1/products/{id}/variants", h.ListProductVariants)

	mux.HandleFunc("GET /api/v1/variants", h.ListVariants)
	mux.HandleFunc("POST /api/v1/variants", h.CreateVariant)
	mux.HandleFunc("GET /api/v1/variants/{id}", h.GetVariant)
	mux.HandleFunc("PATCH /api/v1/variants/{id}", h.UpdateVariant)
	mux.HandleFunc("DELETE /api/v1/variants/{id}", h.DeleteVariant)

	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("POST /api/v1/categories", h.CreateCategory)
	mux.HandleFunc("PATCH /api/v1/categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /api/v1/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /api/v1/variant-categories", h.ListVariantCategories)
	mux.HandleFunc("POST /api/v1/variant-categories", h.CreateVariantCategory)

	mux.HandleFunc("GET /api/v1/sizes", h.ListSizes)
	mux.HandleFunc("POST /api/v1/sizes", h.CreateSize)
	mux.HandleFunc("DELETE /api/v1/sizes/{id}", h.DeleteSize)

	mux.HandleFunc("GET /api/v1/colors", h.ListColors)
	mux.HandleFunc("POST /api/v1/colors", h.CreateColor)
	mux.HandleFunc("DELETE /api/v1/colors/{id}", h.DeleteColor)
}

// ============================================================================
// Product
// ============================================================================

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  *string `json:"category_id"`
}

// ListProducts 列出商品
// GET /api/v1/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("[catalog] list products failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct 创建商品
// POST /api/v1/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.CategoryID != nil {
		category, err := h.store.GetCategory(r.Context(), *req.CategoryID)
		if err != nil {
			log.Printf("[catalog] category lookup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if category == nil {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
	}

	now := time.Now()
	product := &model.Product{
		ID:          generateID("prod"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		log.Printf("[catalog] create product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// GetProduct 查询单个商品
// GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct 更新商品
// PATCH /api/v1/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.CategoryID != nil {
		category, err := h.store.GetCategory(r.Context(), *req.CategoryID)
		if err != nil {
			log.Printf("[catalog] category lookup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if category == nil {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		product.CategoryID = req.CategoryID
	}

	if err := h.store.UpdateProduct(r.Context(), product); err != nil {
		log.Printf("[catalog] update product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct 删除商品（变体级联删除）
// DELETE /api/v1/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err := h.store.DeleteProduct(r.Context(), product.ID); err != nil {
		log.Printf("[catalog] delete product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListProductVariants 列出某商品下的变体
// GET /api/v1/products/{id}/variants
func (h *Handler) ListProductVariants(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get product failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	variants, err := h.store.ListVariantsByProduct(r.Context(), product.ID)
	if err != nil {
		log.Printf("[catalog] list variants failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if variants == nil {
		variants = []*model.ProductVariant{}
	}
	writeJSON(w, http.StatusOK, variants)
}

// ============================================================================
// ProductVariant
// ============================================================================

type variantRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	Stock             int     `json:"stock"`
	StockMin          int     `json:"stock_min"`
	ProductID         string  `json:"product_id"`
	VariantCategoryID string  `json:"variant_category_id"`
}

// ListVariants 列出所有变体
// GET /api/v1/variants
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.store.ListVariants(r.Context())
	if err != nil {
		log.Printf("[catalog] list variants failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if variants == nil {
		variants = []*model.ProductVariant{}
	}
	writeJSON(w, http.StatusOK, variants)
}

// CreateVariant 创建变体
//
// 初始库存通过请求里的 stock 直接落库，不产生台账记录；
// 后续变更必须走 stock 包。
// POST /api/v1/variants
func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.ProductID == "" || req.VariantCategoryID == "" {
		writeError(w, http.StatusBadRequest, "name, product_id and variant_category_id are required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	product, err := h.store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		log.Printf("[catalog] product lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	vc, err := h.store.GetVariantCategory(r.Context(), req.VariantCategoryID)
	if err != nil {
		log.Printf("[catalog] variant category lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if vc == nil {
		writeError(w, http.StatusNotFound, "variant category not found")
		return
	}

	now := time.Now()
	variant := &model.ProductVariant{
		ID:                generateID("var"),
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Stock:             req.Stock,
		StockMin:          req.StockMin,
		ProductID:         req.ProductID,
		VariantCategoryID: req.VariantCategoryID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.store.CreateVariant(r.Context(), variant); err != nil {
		log.Printf("[catalog] create variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, variant)
}

// GetVariant 查询单个变体
// GET /api/v1/variants/{id}
func (h *Handler) GetVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.store.GetVariant(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if variant == nil {
		writeError(w, http.StatusNotFound, "variant not found")
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

// UpdateVariant 更新变体基础字段
//
// 不接受 stock 字段：库存修改只能走 stock 包的入库/出库接口。
// PATCH /api/v1/variants/{id}
func (h *Handler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.store.GetVariant(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if variant == nil {
		writeError(w, http.StatusNotFound, "variant not found")
		return
	}

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		variant.Name = req.Name
	}
	if req.Description != "" {
		variant.Description = req.Description
	}
	if req.Price > 0 {
		variant.Price = req.Price
	}
	if req.StockMin > 0 {
		variant.StockMin = req.StockMin
	}

	if err := h.store.UpdateVariant(r.Context(), variant); err != nil {
		log.Printf("[catalog] update variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

// DeleteVariant 删除变体
// DELETE /api/v1/variants/{id}
func (h *Handler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.store.GetVariant(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if variant == nil {
		writeError(w, http.StatusNotFound, "variant not found")
		return
	}
	if err := h.store.DeleteVariant(r.Context(), variant.ID); err != nil {
		log.Printf("[catalog] delete variant failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ============================================================================
// Category / VariantCategory
// ============================================================================

type nameRequest struct {
	Name string `json:"name"`
}

// ListCategories 列出商品分类
// GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("[catalog] list categories failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory 创建商品分类
// POST /api/v1/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	category := &model.Category{ID: generateID("cat"), Name: req.Name, CreatedAt: time.Now()}
	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		log.Printf("[catalog] create category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory 更新商品分类
// PATCH /api/v1/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	category.Name = req.Name
	if err := h.store.UpdateCategory(r.Context(), category); err != nil {
		log.Printf("[catalog] update category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory 删除商品分类
// DELETE /api/v1/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[catalog] get category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err := h.store.DeleteCategory(r.Context(), category.ID); err != nil {
		log.Printf("[catalog] delete category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListVariantCategories 列出变体分类
// GET /api/v1/variant-categories
func (h *Handler) ListVariantCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListVariantCategories(r.Context())
	if err != nil {
		log.Printf("[catalog] list variant categories failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if categories == nil {
		categories = []*model.VariantCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateVariantCategory 创建变体分类
// POST /api/v1/variant-categories
func (h *Handler) CreateVariantCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	vc := &model.VariantCategory{ID: generateID("vcat"), Name: req.Name, CreatedAt: time.Now()}
	if err := h.store.CreateVariantCategory(r.Context(), vc); err != nil {
		log.Printf("[catalog] create variant category failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, vc)
}

// ============================================================================
// Size / Color
// ============================================================================

// ListSizes 列出尺码
// GET /api/v1/sizes
func (h *Handler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.store.ListSizes(r.Context())
	if err != nil {
		log.Printf("[catalog] list sizes failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sizes == nil {
		sizes = []*model.Size{}
	}
	writeJSON(w, http.StatusOK, sizes)
}

// CreateSize 创建尺码
// POST /api/v1/sizes
func (h *Handler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	size := &model.Size{ID: generateID("size"), Name: req.Name}
	if err := h.store.CreateSize(r.Context(), size); err != nil {
		log.Printf("[catalog] create size failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, size)
}

// DeleteSize 删除尺码
// DELETE /api/v1/sizes/{id}
func (h *Handler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSize(r.Context(), r.PathValue("id")); err != nil {
		log.Printf("[catalog] delete size failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type colorRequest struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ListColors 列出颜色
// GET /api/v1/colors
func (h *Handler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.store.ListColors(r.Context())
	if err != nil {
		log.Printf("[catalog] list colors failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if colors == nil {
		colors = []*model.Color{}
	}
	writeJSON(w, http.StatusOK, colors)
}

// CreateColor 创建颜色
// POST /api/v1/colors
func (h *Handler) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	color := &model.Color{ID: generateID("clr"), Name: req.Name, Hex: req.Hex}
	if err := h.store.CreateColor(r.Context(), color); err != nil {
		log.Printf("[catalog] create color failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, color)
}

// DeleteColor 删除颜色
// DELETE /api/v1/colors/{id}
func (h *Handler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteColor(r.Context(), r.PathValue("id")); err != nil {
		log.Printf("[catalog] delete color failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ============================================================================
// 辅助函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[catalog] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func generateID(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s-unknown", prefix)
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b))
}
