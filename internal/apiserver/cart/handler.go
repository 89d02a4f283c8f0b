package cart

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"shop-admin/internal/shared/apperr"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	service *Service
}

// NewHandler 创建购物车处理器
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册购物车路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/cart/{userId}", h.GetCart)
	mux.HandleFunc("POST /api/v1/cart/{userId}", h.AddToCart)
	mux.HandleFunc("PATCH /api/v1/cart/{userId}", h.UpdateQuantity)
	mux.HandleFunc("DELETE /api/v1/cart/{userId}/{variantId}", h.RemoveProduct)
	mux.HandleFunc("DELETE /api/v1/cart/{userId}", h.ClearCart)
}

type mutateCartRequest struct {
	ProductVariantID string `json:"productVariantId"`
	Quantity         int    `json:"quantity"`
}

// GetCart 查询购物车
// GET /api/v1/cart/{userId}
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddToCart 加购
// POST /api/v1/cart/{userId}
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req mutateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductVariantID == "" {
		writeError(w, http.StatusBadRequest, "productVariantId is required")
		return
	}

	cart, err := h.service.AddToCart(r.Context(), r.PathValue("userId"), req.ProductVariantID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// UpdateQuantity 设置行项数量
// PATCH /api/v1/cart/{userId}
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req mutateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductVariantID == "" {
		writeError(w, http.StatusBadRequest, "productVariantId is required")
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), r.PathValue("userId"), req.ProductVariantID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveProduct 移除一个变体
// DELETE /api/v1/cart/{userId}/{variantId}
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveProduct(r.Context(), r.PathValue("userId"), r.PathValue("variantId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// ClearCart 清空购物车
// DELETE /api/v1/cart/{userId}
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// ============================================================================
// 辅助函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[cart] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("[cart] internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func generateID(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s-unknown", prefix)
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b))
}
