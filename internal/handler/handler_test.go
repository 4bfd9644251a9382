package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// stubSource backs a real Repository so the handler is tested through the
// same orchestration path production uses.
type stubSource struct {
	products []product.Product
	err      error
}

func (s *stubSource) Fetch(_ context.Context) ([]product.Product, error) {
	return s.products, s.err
}

type productJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

type errorJSON struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func serve(t *testing.T, src catalog.Source) *httptest.ResponseRecorder {
	t.Helper()
	svc := catalog.NewService(catalog.NewRepository(src))
	mux := http.NewServeMux()
	New(svc).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	return rec
}

func TestListProducts_OK(t *testing.T) {
	rec := serve(t, &stubSource{products: []product.Product{{
		ID:          "1",
		Name:        "A",
		Description: "d",
		Price:       decimal.RequireFromString("9.99"),
		ImageURL:    "u",
	}}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []productJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, productJSON{
		ID: "1", Name: "A", Description: "d", Price: 9.99, ImageURL: "u",
	}, got[0])
}

func TestListProducts_EmptyCatalog(t *testing.T) {
	rec := serve(t, &stubSource{})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListProducts_ServerFailure(t *testing.T) {
	rec := serve(t, &stubSource{err: assert.AnError})

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var got errorJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, http.StatusBadGateway, got.Code)
	assert.Equal(t, assert.AnError.Error(), got.Message)
}

type offlineProber struct{}

func (offlineProber) Online(context.Context) bool { return false }

func TestListProducts_NetworkFailure(t *testing.T) {
	svc := catalog.NewService(catalog.NewRepository(&stubSource{}, catalog.WithProber(offlineProber{})))
	mux := http.NewServeMux()
	New(svc).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var got errorJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, catalog.MsgNoConnection, got.Message)
}

func TestListProducts_MethodNotAllowed(t *testing.T) {
	svc := catalog.NewService(catalog.NewRepository(&stubSource{}))
	mux := http.NewServeMux()
	New(svc).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
