package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 包含所有 API Server 指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 认证指标
	LoginsTotal           *prometheus.CounterVec
	RecoveryRequestsTotal *prometheus.CounterVec

	// 购物车指标
	CartMutationsTotal *prometheus.CounterVec

	// 库存指标
	StockMovementsTotal *prometheus.CounterVec
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total login attempts by outcome",
			},
			[]string{"outcome"},
		),
		RecoveryRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "password_recovery_requests_total",
				Help:      "Total password recovery requests by outcome",
			},
			[]string{"outcome"},
		),
		CartMutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_mutations_total",
				Help:      "Total cart mutations by operation",
			},
			[]string{"operation"},
		),
		StockMovementsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_movements_total",
				Help:      "Total stock movements by direction",
			},
			[]string{"direction"},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数
func normalizePath(path string) string {
	prefixes := []struct {
		prefix      string
		replacement string
	}{
		{"/api/v1/users/", "/api/v1/users/{id}"},
		{"/api/v1/cart/", "/api/v1/cart/{userId}"},
		{"/api/v1/stock/", "/api/v1/stock/{variantId}"},
		{"/api/v1/products/", "/api/v1/products/{id}"},
		{"/api/v1/variants/", "/api/v1/variants/{id}"},
		{"/api/v1/categories/", "/api/v1/categories/{id}"},
		{"/api/v1/sizes/", "/api/v1/sizes/{id}"},
		{"/api/v1/colors/", "/api/v1/colors/{id}"},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			return p.replacement
		}
	}
	return path
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordLogin 记录登录结果
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordRecoveryRequest 记录密码找回请求结果
func (m *Metrics) RecordRecoveryRequest(outcome string) {
	m.RecoveryRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordCartMutation 记录购物车变更
func (m *Metrics) RecordCartMutation(operation string) {
	m.CartMutationsTotal.WithLabelValues(operation).Inc()
}

// RecordStockMovement 记录库存流水
func (m *Metrics) RecordStockMovement(direction string) {
	m.StockMovementsTotal.WithLabelValues(direction).Inc()
}
