package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublicRoute(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/auth/login", true},
		{"/api/v1/auth/register", true},
		{"/api/v1/auth/recover", true},
		{"/api/v1/auth/recovery/confirm", true},
		{"/health", true},
		{"/metrics", true},
		{"/api/v1/users", false},
		{"/api/v1/cart/usr-1", false},
		{"/api/v1/stock/var-1/add", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublicRoute(tt.path))
		})
	}
}

func TestMiddleware(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	var seen *AuthUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(svc)(next)

	token, err := GenerateSessionToken(svc.cfg, "alice", "alice@example.com", "admin")
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
		wantUser   bool
	}{
		{"public route without token", "/api/v1/auth/login", "", http.StatusOK, false},
		{"protected route without header", "/api/v1/users", "", http.StatusUnauthorized, false},
		{"malformed header", "/api/v1/users", "Token abc", http.StatusUnauthorized, false},
		{"garbage token", "/api/v1/users", "Bearer garbage", http.StatusUnauthorized, false},
		{"valid bearer token", "/api/v1/users", "Bearer " + token, http.StatusOK, true},
		{"lowercase bearer", "/api/v1/users", "bearer " + token, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser {
				require.NotNil(t, seen)
				assert.Equal(t, "alice", seen.Username)
				assert.Equal(t, "admin", seen.Role)
			}
		})
	}
}

func TestMiddlewareRejectsDeletedUser(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ghost", "ghost@example.com", "password123")
	require.NoError(t, err)
	token, err := svc.Authenticate(ctx, "ghost", "password123", ClientInfo{})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(svc)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// 用户删除后，密码学上仍然有效的令牌必须被拒绝
	require.NoError(t, store.DeleteUser(ctx, user.ID))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	called := false
	handler := AdminOnly(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no auth user", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("non-admin user", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{Username: "bob", Role: "user"}))
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("admin user", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{Username: "root", Role: "admin"}))
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}
