// Package users 用户管理接口
//
// 面向后台的用户查询和维护操作。角色变更仅管理员可用，
// 其余操作要求有效会话（由服务器层的认证中间件保证）。
package users

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// Store 用户管理所需的存储接口
type Store interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, username, email string) error
	UpdateUserRole(ctx context.Context, id string, role model.UserRole) error
	DeleteUser(ctx context.Context, id string) error
	ListLoginAudits(ctx context.Context, userID string, limit int) ([]*model.LoginAudit, error)
}

// Handler 用户管理 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建用户管理处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户管理路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users", h.ListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", h.GetUser)
	mux.HandleFunc("PATCH /api/v1/users/{id}", h.UpdateUser)
	mux.HandleFunc("PUT /api/v1/users/{id}/role", h.UpdateRole)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.DeleteUser)
	mux.HandleFunc("GET /api/v1/users/{id}/logins", h.ListLogins)
}

// ListUsers 列出所有用户
// GET /api/v1/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[users] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser 查询单个用户
// GET /api/v1/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[users] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUser 更新用户名和邮箱
// PATCH /api/v1/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[users] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Username == "" {
		req.Username = user.Username
	}
	if req.Email == "" {
		req.Email = user.Email
	} else if !emailRegex.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := h.store.UpdateUserProfile(r.Context(), user.ID, req.Username, req.Email); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "username or email already in use")
			return
		}
		log.Printf("[users] update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.Username = req.Username
	user.Email = req.Email
	writeJSON(w, http.StatusOK, user)
}

type updateRoleRequest struct {
	Role model.UserRole `json:"role"`
}

// UpdateRole 变更用户角色（仅管理员）
// PUT /api/v1/users/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAuthUser(r.Context())
	if actor == nil || actor.Role != string(model.UserRoleAdmin) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != model.UserRoleAdmin && req.Role != model.UserRoleUser {
		writeError(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[users] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.store.UpdateUserRole(r.Context(), user.ID, req.Role); err != nil {
		log.Printf("[users] role update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Printf("[users] %s changed role of %s to %s", actor.Username, user.Username, req.Role)
	user.Role = req.Role
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[users] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.store.DeleteUser(r.Context(), user.ID); err != nil {
		log.Printf("[users] delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListLogins 查询用户的登录审计记录
// GET /api/v1/users/{id}/logins
func (h *Handler) ListLogins(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[users] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	audits, err := h.store.ListLoginAudits(r.Context(), user.ID, 100)
	if err != nil {
		log.Printf("[users] list logins failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if audits == nil {
		audits = []*model.LoginAudit{}
	}
	writeJSON(w, http.StatusOK, audits)
}

// ============================================================================
// 辅助函数
// ============================================================================

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[users] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
