package stock

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/model"
)

const defaultHistoryLimit = 100

// Handler 库存 HTTP 处理器
type Handler struct {
	service *Service
}

// NewHandler 创建库存处理器
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册库存路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/stock/{variantId}/add", h.AddStock)
	mux.HandleFunc("POST /api/v1/stock/{variantId}/remove", h.RemoveStock)
	mux.HandleFunc("GET /api/v1/stock/{variantId}/history", h.History)
}

type adjustStockRequest struct {
	Quantity int     `json:"quantity"`
	Reason   *string `json:"reason,omitempty"`
}

// AddStock 入库
// POST /api/v1/stock/{variantId}/add
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, true)
}

// RemoveStock 出库
// POST /api/v1/stock/{variantId}/remove
func (h *Handler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, false)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, ingress bool) {
	var req adjustStockRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	variantID := r.PathValue("variantId")
	var (
		variant *model.ProductVariant
		err     error
	)
	if ingress {
		variant, err = h.service.AddStock(r.Context(), variantID, req.Quantity, req.Reason)
	} else {
		variant, err = h.service.RemoveStock(r.Context(), variantID, req.Quantity, req.Reason)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

// History 查询库存台账
// GET /api/v1/stock/{variantId}/history?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.service.History(r.Context(), r.PathValue("variantId"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.HistoricStockLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ============================================================================
// 辅助函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[stock] failed to encode response: %v", err)
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
	default:
		log.Printf("[stock] internal error: %v", err)
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
