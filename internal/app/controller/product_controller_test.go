package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRoutes(t *testing.T) *controllerFixture {
	f := setupControllerTest(t)
	ctrl := NewProductController(f.products)

	products := f.router.Group("/products")
	products.GET("", ctrl.GetAllProducts)
	products.GET("/recent", ctrl.GetRecentProducts)
	products.GET("/search", ctrl.SearchProducts)
	products.GET("/categories", ctrl.GetCategories)
	products.POST("/filter", ctrl.FilterProducts)
	products.GET("/:id", ctrl.GetProductByID)
	products.POST("", ctrl.CreateProduct)
	products.PUT("/:id", ctrl.UpdateProduct)
	products.DELETE("/:id", ctrl.DeleteProduct)
	return f
}

func TestProductController_GetAllProducts_Success(t *testing.T) {
	f := setupProductRoutes(t)
	f.seed(t, "Air Max 90", model.CategoryShoes)
	f.seed(t, "Canvas Tote Bag", model.CategoryBags)

	w, body := f.do(t, http.MethodGet, "/products", 0, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"].([]interface{}), 2)
	assert.Equal(t, float64(2), body["count"])
}

func TestProductController_GetProductByID(t *testing.T) {
	f := setupProductRoutes(t)
	p := f.seed(t, "Air Max 90", model.CategoryShoes)

	w, body := f.do(t, http.MethodGet, fmt.Sprintf("/products/%d", p.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Air Max 90", data["name"])
	assert.Equal(t, "SHOES", data["category"])

	w, body = f.do(t, http.MethodGet, "/products/9999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ProductNotFound, body["error"])
	assert.Equal(t, false, body["success"])

	w, body = f.do(t, http.MethodGet, "/products/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidID, body["error"])
}

func TestProductController_GetRecentProducts(t *testing.T) {
	f := setupProductRoutes(t)
	for i := 0; i < 3; i++ {
		f.seed(t, fmt.Sprintf("Product %d", i), model.CategoryMen)
	}

	w, body := f.do(t, http.MethodGet, "/products/recent?limit=2", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Product 2", data[0].(map[string]interface{})["name"])

	w, body = f.do(t, http.MethodGet, "/products/recent", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]interface{}), 3)

	w, body = f.do(t, http.MethodGet, "/products/recent?limit=0", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]interface{}), 3, "zero means the default, not an empty page")

	w, body = f.do(t, http.MethodGet, "/products/recent?limit=-1", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidRange, body["error"])
}

func TestProductController_SearchProducts(t *testing.T) {
	f := setupProductRoutes(t)
	f.seed(t, "Air Max 90", model.CategoryShoes)
	f.seed(t, "Canvas Tote Bag", model.CategoryBags)

	w, body := f.do(t, http.MethodGet, "/products/search?q=air", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Air Max 90", data[0].(map[string]interface{})["name"])

	w, body = f.do(t, http.MethodGet, "/products/search?q=", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].([]interface{}), 2)
}

func TestProductController_FilterProducts(t *testing.T) {
	f := setupProductRoutes(t)
	f.seed(t, "Air Max 90", model.CategoryShoes)
	f.seed(t, "Canvas Tote Bag", model.CategoryBags)
	f.seed(t, "Oxford Shirt", model.CategoryMen)

	tests := []struct {
		name  string
		body  interface{}
		count int
	}{
		{"Single category, lower case", map[string]interface{}{"category": []string{"shoes"}}, 1},
		{"Two categories", map[string]interface{}{"category": []string{"SHOES", "BAGS"}}, 2},
		{"Empty set lists all", map[string]interface{}{"category": []string{}}, 3},
		{"No body lists all", nil, 3},
		{"Unknown category", map[string]interface{}{"category": []string{"HATS"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, http.MethodPost, "/products/filter", 0, tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, body["data"].([]interface{}), tt.count)
		})
	}
}

func TestProductController_GetCategories(t *testing.T) {
	f := setupProductRoutes(t)
	f.seed(t, "Bucket Hat", model.ProductCategory("HATS"))

	w, body := f.do(t, http.MethodGet, "/products/categories", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].([]interface{})
	assert.Contains(t, data, "SHOES")
	assert.Contains(t, data, "HATS")
}

func TestProductController_CreateProduct(t *testing.T) {
	f := setupProductRoutes(t)

	w, body := f.do(t, http.MethodPost, "/products", 1, map[string]interface{}{
		"name":     "Leather Belt",
		"brand":    "Acme",
		"category": " accessories ",
		"images":   []string{"https://cdn.example.com/belt.jpg"},
		"price":    49.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := body["data"].(map[string]interface{})
	assert.NotZero(t, data["id"])
	assert.Equal(t, "ACCESSORIES", data["category"])
}

func TestProductController_CreateProduct_Invalid(t *testing.T) {
	f := setupProductRoutes(t)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{
			name: "No images",
			body: map[string]interface{}{
				"name": "Belt", "category": "ACCESSORIES", "images": []string{}, "price": 10,
			},
			wantField: "images",
		},
		{
			name: "Negative price",
			body: map[string]interface{}{
				"name": "Belt", "category": "ACCESSORIES", "images": []string{"https://cdn.example.com/b.jpg"}, "price": -1,
			},
			wantField: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, http.MethodPost, "/products", 1, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperrors.ValidationInvalidInput, body["error"])
			fields := body["fields"].(map[string]interface{})
			assert.Contains(t, fields, tt.wantField)
		})
	}

	w, body := f.do(t, http.MethodPost, "/products", 1, map[string]interface{}{"brand": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, body["error"])
}

func TestProductController_UpdateProduct(t *testing.T) {
	f := setupProductRoutes(t)
	p := f.seed(t, "Oxford Shirt", model.CategoryMen)

	w, body := f.do(t, http.MethodPut, fmt.Sprintf("/products/%d", p.ID), 1, map[string]interface{}{
		"price": 79.0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 79.0, data["price"])
	assert.Equal(t, "Oxford Shirt", data["name"])

	w, _ = f.do(t, http.MethodPut, fmt.Sprintf("/products/%d", p.ID), 1, map[string]interface{}{
		"images": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPut, "/products/9999", 1, map[string]interface{}{"price": 1.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_DeleteProduct(t *testing.T) {
	f := setupProductRoutes(t)
	p := f.seed(t, "Kids Rain Jacket", model.CategoryKids)

	w, body := f.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", p.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kids Rain Jacket", body["data"].(map[string]interface{})["name"])

	w, _ = f.do(t, http.MethodGet, fmt.Sprintf("/products/%d", p.ID), 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", p.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
