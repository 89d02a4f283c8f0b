// Package server 路由配置与核心基础设施
//
// 本包把各领域独立包（auth/users/cart/stock/catalog）的路由组装成
// 一个 HTTP Handler，并串联中间件链：指标 -> 认证 -> CORS。
//
// 文件组织：
//   - handler.go: Handler 定义与路由装配
//   - metrics.go: Prometheus 指标
package server

import (
	"net/http"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/cart"
	"shop-admin/internal/apiserver/catalog"
	"shop-admin/internal/apiserver/stock"
	"shop-admin/internal/apiserver/users"
	"shop-admin/internal/shared/cache/redis"
	"shop-admin/internal/shared/mail"
	"shop-admin/internal/shared/storage/repository"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，持有存储层、邮件发送器和
// 可选的 Redis 缓存（用于密码找回限流）。
type Handler struct {
	store      *repository.Store // 持久化存储层
	mailer     mail.Mailer       // 找回码邮件发送
	redisStore *redis.Store      // 可选：找回请求限流
	authConfig auth.Config
	metrics    *Metrics // Prometheus 指标
}

// NewHandler 创建 Handler 实例
//
// redisStore 可以为 nil：此时密码找回限流完全依赖数据库时间戳。
func NewHandler(store *repository.Store, mailer mail.Mailer, redisStore *redis.Store, authConfig auth.Config) *Handler {
	return &Handler{
		store:      store,
		mailer:     mailer,
		redisStore: redisStore,
		authConfig: authConfig,
		metrics:    NewMetrics("shop"),
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/v1/auth/register - 注册
//   - POST /api/v1/auth/login    - 登录
//   - POST /api/v1/auth/validate - 校验会话令牌
//   - POST /api/v1/auth/recover  - 发起密码找回
//   - POST /api/v1/auth/recovery/confirm - 用找回码重设密码
//
// 用户管理 (Users):
//   - GET    /api/v1/users            - 列出用户
//   - GET    /api/v1/users/{id}       - 用户详情
//   - PATCH  /api/v1/users/{id}       - 更新用户名/邮箱
//   - PUT    /api/v1/users/{id}/role  - 变更角色（仅管理员）
//   - DELETE /api/v1/users/{id}       - 删除用户
//   - GET    /api/v1/users/{id}/logins - 登录审计记录
//
// 购物车 (Cart):
//   - GET    /api/v1/cart/{userId}             - 查询购物车
//   - POST   /api/v1/cart/{userId}             - 加购
//   - PATCH  /api/v1/cart/{userId}             - 设置行项数量
//   - DELETE /api/v1/cart/{userId}/{variantId} - 移除变体
//   - DELETE /api/v1/cart/{userId}             - 清空购物车
//
// 库存 (Stock):
//   - POST /api/v1/stock/{variantId}/add     - 入库
//   - POST /api/v1/stock/{variantId}/remove  - 出库
//   - GET  /api/v1/stock/{variantId}/history - 库存台账
//
// 目录 (Catalog):
//   - /api/v1/products, /api/v1/variants, /api/v1/categories,
//     /api/v1/variant-categories, /api/v1/sizes, /api/v1/colors
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 路由
	authService := auth.NewService(h.store, h.store, h.mailer, h.authConfig)
	authService.SetMetrics(h.metrics)
	if h.redisStore != nil {
		authService.SetThrottle(h.redisStore)
	}
	authHandler := auth.NewHandler(authService)
	authHandler.RegisterRoutes(mux)

	// 用户管理接口
	usersHandler := users.NewHandler(h.store)
	usersHandler.RegisterRoutes(mux)

	// 购物车接口
	cartService := cart.NewService(h.store, h.store, h.store)
	cartService.SetMetrics(h.metrics)
	cartHandler := cart.NewHandler(cartService)
	cartHandler.RegisterRoutes(mux)

	// 库存接口
	stockService := stock.NewService(h.store)
	stockService.SetMetrics(h.metrics)
	stockHandler := stock.NewHandler(stockService)
	stockHandler.RegisterRoutes(mux)

	// 目录接口
	catalogHandler := catalog.NewHandler(h.store)
	catalogHandler.RegisterRoutes(mux)

	// 应用指标中间件到 REST API
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用认证中间件
	authedHandler := auth.Middleware(authService)(apiHandler)

	// 应用 CORS 中间件
	return corsMiddleware(authedHandler)
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
