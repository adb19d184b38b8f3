package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category" binding:"required"`
	Images      []string `json:"images" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
}

// UpdateProductRequest is a partial update; omitted fields stay unchanged
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Images      []string `json:"images"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

type FilterProductsRequest struct {
	Category []string `json:"category"`
}

// GetAllProducts returns every live product
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "List products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})

	respondOK(c, gin.H{
		"data":  products,
		"count": len(products),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, log, err, "Get product")
		return
	}

	respondOK(c, gin.H{"data": product})
}

// GetRecentProducts returns the newest products. A missing limit or limit=0
// means the configured default (8); limits above 100 are capped.
// GET /api/v1/products/recent?limit=8
func (ctrl *ProductController) GetRecentProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	products, err := ctrl.productService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, log, err, "List recent products")
		return
	}

	respondOK(c, gin.H{
		"data":  products,
		"count": len(products),
	})
}

// SearchProducts matches every token of q against name, brand and description
// GET /api/v1/products/search?q=
func (ctrl *ProductController) SearchProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	products, err := ctrl.productService.SearchText(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, log, err, "Search products")
		return
	}

	log.Debug("Product search completed", map[string]interface{}{
		"query": query,
		"count": len(products),
	})

	respondOK(c, gin.H{
		"data":  products,
		"count": len(products),
	})
}

// FilterProducts returns products in any of the given categories
// POST /api/v1/products/filter
func (ctrl *ProductController) FilterProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req FilterProductsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("Invalid filter request", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
			return
		}
	}

	products, err := ctrl.productService.FilterByCategories(c.Request.Context(), req.Category)
	if err != nil {
		respondServiceError(c, log, err, "Filter products")
		return
	}

	respondOK(c, gin.H{
		"data":  products,
		"count": len(products),
	})
}

// GetCategories lists known and in-use categories
// GET /api/v1/products/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.productService.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "List categories")
		return
	}

	respondOK(c, gin.H{"data": categories})
}

// CreateProduct creates a new product (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name, category and images are required")
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    model.ProductCategory(req.Category),
		Images:      req.Images,
		Description: req.Description,
		Price:       req.Price,
	}

	if err := ctrl.productService.Create(c.Request.Context(), product); err != nil {
		respondServiceError(c, log, err, "Create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"data":    product,
	})
}

// UpdateProduct applies a partial update (Admin only)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	update := model.ProductUpdate{
		Name:        req.Name,
		Brand:       req.Brand,
		Images:      req.Images,
		Description: req.Description,
		Price:       req.Price,
	}
	if req.Category != nil {
		category := model.ProductCategory(*req.Category)
		update.Category = &category
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, update)
	if err != nil {
		respondServiceError(c, log, err, "Update product")
		return
	}

	respondOK(c, gin.H{
		"message": "Product updated successfully",
		"data":    product,
	})
}

// DeleteProduct deletes a product and every favorite pointing at it (Admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, log, err, "Delete product")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
		"admin_id":   adminID,
	})

	respondOK(c, gin.H{
		"message": "Product deleted successfully",
		"data":    product,
	})
}
