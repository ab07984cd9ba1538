package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/repository"
	"github.com/tatylu/storefront/internal/service"
	"github.com/tatylu/storefront/pkg/logger"
)

func newProductRouter() *chi.Mux {
	catalog := repository.NewInMemoryCatalog()
	svc := service.NewProductService(catalog)
	log := logger.New("error")
	handler := NewProductHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/api/product", handler.ListProducts)
	r.Get("/api/product/{productId}", handler.GetProduct)
	return r
}

func TestListProducts(t *testing.T) {
	r := newProductRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var products []models.Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(products) != 8 {
		t.Errorf("expected 8 products, got %d", len(products))
	}
}

func TestListProducts_CategoryFilter(t *testing.T) {
	r := newProductRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/product?category=Footwear", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var products []models.Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(products) != 1 {
		t.Fatalf("expected 1 Footwear product, got %d", len(products))
	}
	if products[0].Name != "Running Sneakers" {
		t.Errorf("expected 'Running Sneakers', got %s", products[0].Name)
	}
}

func TestGetProduct_Success(t *testing.T) {
	r := newProductRouter()

	// The same record is reachable under both the canonical and legacy keys.
	testCases := []struct {
		name string
		key  string
	}{
		{"canonical key", "64a1f0b2c3d4e5f601234001"},
		{"legacy key", "1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product/"+tc.key, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}

			var product models.Product
			if err := json.NewDecoder(w.Body).Decode(&product); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if product.ID != "64a1f0b2c3d4e5f601234001" {
				t.Errorf("expected product ID 64a1f0b2c3d4e5f601234001, got %s", product.ID)
			}

			if product.Name != "Cotton T-Shirt" {
				t.Errorf("expected product name 'Cotton T-Shirt', got %s", product.Name)
			}

			if product.Price != 12.99 {
				t.Errorf("expected product price 12.99, got %f", product.Price)
			}

			if product.Category != "Apparel" {
				t.Errorf("expected product category 'Apparel', got %s", product.Category)
			}
		})
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	r := newProductRouter()

	testCases := []struct {
		name string
		key  string
	}{
		{"unknown legacy key", "999"},
		{"unknown canonical key", "64a1f0b2c3d4e5f6012340ff"},
		{"arbitrary string", "not-a-product"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product/"+tc.key, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", w.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}

			if response["error"] != "Product not found" {
				t.Errorf("expected error message 'Product not found', got %s", response["error"])
			}
		})
	}
}

func TestGetProduct_MultipleProducts(t *testing.T) {
	r := newProductRouter()

	testCases := []struct {
		key      string
		id       string
		name     string
		category string
	}{
		{"2", "64a1f0b2c3d4e5f601234002", "Denim Jacket", "Apparel"},
		{"4", "64a1f0b2c3d4e5f601234004", "Canvas Tote Bag", "Accessories"},
		{"6", "64a1f0b2c3d4e5f601234006", "Running Sneakers", "Footwear"},
		{"64a1f0b2c3d4e5f601234008", "64a1f0b2c3d4e5f601234008", "Hooded Sweatshirt", "Apparel"},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product/"+tc.key, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}

			var product models.Product
			if err := json.NewDecoder(w.Body).Decode(&product); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if product.ID != tc.id {
				t.Errorf("expected product ID %s, got %s", tc.id, product.ID)
			}

			if product.Name != tc.name {
				t.Errorf("expected product name '%s', got %s", tc.name, product.Name)
			}

			if product.Category != tc.category {
				t.Errorf("expected product category '%s', got %s", tc.category, product.Category)
			}
		})
	}
}
