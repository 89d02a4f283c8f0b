package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *Service) {
	t.Helper()
	svc, store := newTestService(t)
	seedUser(t, store, "usr-1")
	seedVariant(t, store, "var-1", 10.0)

	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)
	return mux, svc
}

func TestAddToCartEndpointValidation(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid add", `{"productVariantId":"var-1","quantity":2}`, http.StatusOK},
		{"missing quantity", `{"productVariantId":"var-1"}`, http.StatusBadRequest},
		{"zero quantity", `{"productVariantId":"var-1","quantity":0}`, http.StatusBadRequest},
		{"negative quantity", `{"productVariantId":"var-1","quantity":-2}`, http.StatusBadRequest},
		{"missing variant id", `{"quantity":1}`, http.StatusBadRequest},
		{"unknown variant", `{"productVariantId":"missing","quantity":1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/usr-1", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCartEndpointRoundTrip(t *testing.T) {
	mux, svc := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/usr-1", strings.NewReader(`{"productVariantId":"var-1","quantity":3}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cart, err := svc.GetCart(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.InDelta(t, 30.0, cart.Total, 1e-9)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cart/usr-1/var-1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cart, err = svc.GetCart(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Products)
}
