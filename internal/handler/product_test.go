package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

type memProductStore struct {
	nextID   int64
	products map[int64]domain.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{nextID: 1, products: make(map[int64]domain.Product)}
}

func (s *memProductStore) List(_ context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].LastUpdated.After(products[j].LastUpdated)
	})
	return products, nil
}

func (s *memProductStore) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *memProductStore) Create(_ context.Context, product domain.Product) (*domain.Product, error) {
	for _, p := range s.products {
		if p.Name == product.Name {
			return nil, domain.ErrConflict
		}
	}
	product.ID = s.nextID
	product.LastUpdated = time.Now()
	s.nextID++
	s.products[product.ID] = product
	return &product, nil
}

func (s *memProductStore) Update(_ context.Context, product domain.Product) (*domain.Product, error) {
	if _, ok := s.products[product.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	product.LastUpdated = time.Now()
	s.products[product.ID] = product
	return &product, nil
}

func (s *memProductStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func newProductApp(store ProductStore) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	h := NewProductHandler(store)
	e.GET("/api/v1/products", h.List)
	e.GET("/api/v1/products/:id", h.Get)
	e.POST("/api/v1/products", h.Create)
	e.PATCH("/api/v1/products/:id", h.Update)
	e.DELETE("/api/v1/products/:id", h.Delete)

	return e
}

func postJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateProduct(t *testing.T) {
	store := newMemProductStore()
	e := newProductApp(store)

	rec := postJSON(e, http.MethodPost, "/api/v1/products",
		`{"name":"The Go Programming Language","price":"32.99","stock":5,"rating":5}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "The Go Programming Language", body.Data.Name)
	assert.True(t, body.Data.Price.Equal(decimal.RequireFromString("32.99")))
	assert.Nil(t, body.Data.LastSyncedAt, "manual creation must not set last_synced_at")
}

func TestCreateProductValidation(t *testing.T) {
	e := newProductApp(newMemProductStore())

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":"10.00"}`},
		{"missing price", `{"name":"X"}`},
		{"bad price", `{"name":"X","price":"ten quid"}`},
		{"negative price", `{"name":"X","price":"-5.00"}`},
		{"negative stock", `{"name":"X","price":"5.00","stock":-1}`},
		{"rating too high", `{"name":"X","price":"5.00","rating":6}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(e, http.MethodPost, "/api/v1/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateDuplicateProductConflict(t *testing.T) {
	e := newProductApp(newMemProductStore())

	rec := postJSON(e, http.MethodPost, "/api/v1/products", `{"name":"Dune","price":"9.99"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(e, http.MethodPost, "/api/v1/products", `{"name":"Dune","price":"8.99"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetProductNotFound(t *testing.T) {
	e := newProductApp(newMemProductStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/99", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductBadID(t *testing.T) {
	e := newProductApp(newMemProductStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchProductPartialUpdate(t *testing.T) {
	store := newMemProductStore()
	e := newProductApp(store)

	rec := postJSON(e, http.MethodPost, "/api/v1/products",
		`{"name":"Neuromancer","price":"15.00","stock":3,"rating":4}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(e, http.MethodPatch, "/api/v1/products/1", `{"price":"12.50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Neuromancer", body.Data.Name, "omitted fields keep stored values")
	assert.Equal(t, 3, body.Data.Stock)
}

func TestDeleteProduct(t *testing.T) {
	store := newMemProductStore()
	e := newProductApp(store)

	rec := postJSON(e, http.MethodPost, "/api/v1/products", `{"name":"Gone","price":"1.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
	del := httptest.NewRecorder()
	e.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNoContent, del.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	get := httptest.NewRecorder()
	e.ServeHTTP(get, req)
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestListProductsOrderedByLastUpdated(t *testing.T) {
	store := newMemProductStore()
	now := time.Now()
	store.products[1] = domain.Product{ID: 1, Name: "Old", LastUpdated: now.Add(-time.Hour)}
	store.products[2] = domain.Product{ID: 2, Name: "New", LastUpdated: now}
	store.nextID = 3

	e := newProductApp(store)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "New", body.Data[0].Name)
}
