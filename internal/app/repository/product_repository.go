package repository

import (
	"sort"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// MaxRecentLimit caps FindRecent
const MaxRecentLimit = 100

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindRecent(limit int) ([]model.Product, error)
	FindByCategories(categories []model.ProductCategory) ([]model.Product, error)
	Search(tokens []string) ([]model.Product, error)
	ListCategories() ([]model.ProductCategory, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":     product.Name,
			"category": product.Category,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

// FindAll returns every live product in insertion order
func (r *productRepository) FindAll() ([]model.Product, error) {
	logger.Debug("Finding all products", nil)

	var products []model.Product
	if err := r.db.Order("products.id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find all products", err)
		return nil, err
	}

	logger.Debug("Products found", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Debug("Product not found by ID in database", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &product, nil
}

// FindRecent returns the newest products, ties broken by id
func (r *productRepository) FindRecent(limit int) ([]model.Product, error) {
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	logger.Debug("Finding recent products", map[string]interface{}{
		"limit": limit,
	})

	var products []model.Product
	err := r.db.Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find recent products", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}
	return products, nil
}

// FindByCategories returns products in any of the given categories. An empty
// set returns every product.
func (r *productRepository) FindByCategories(categories []model.ProductCategory) ([]model.Product, error) {
	if len(categories) == 0 {
		return r.FindAll()
	}

	logger.Debug("Finding products by categories", map[string]interface{}{
		"categories": categories,
	})

	var products []model.Product
	err := r.db.Where("products.category IN ?", categories).
		Order("products.id ASC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products by categories", err, map[string]interface{}{
			"categories": categories,
		})
		return nil, err
	}

	logger.Debug("Products found by categories", map[string]interface{}{
		"categories": categories,
		"count":      len(products),
	})
	return products, nil
}

// Search returns products where every token occurs in the name, brand or
// description, case-insensitively. No tokens returns every product.
func (r *productRepository) Search(tokens []string) ([]model.Product, error) {
	if len(tokens) == 0 {
		return r.FindAll()
	}

	logger.Debug("Searching products", map[string]interface{}{
		"tokens": tokens,
	})

	query := r.db.Model(&model.Product{})
	for _, token := range tokens {
		like := "%" + escapeLike(strings.ToLower(token)) + "%"
		query = query.Where(
			`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.brand) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	var products []model.Product
	if err := query.Order("products.id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to search products", err, map[string]interface{}{
			"tokens": tokens,
		})
		return nil, err
	}

	logger.Debug("Products found by search", map[string]interface{}{
		"tokens": tokens,
		"count":  len(products),
	})
	return products, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListCategories returns the known categories plus any others in use, sorted
func (r *productRepository) ListCategories() ([]model.ProductCategory, error) {
	var values []string
	if err := r.db.Model(&model.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Pluck("category", &values).Error; err != nil {
		logger.Error("Failed to fetch distinct categories", err)
		return nil, err
	}

	seen := make(map[model.ProductCategory]struct{}, len(model.KnownCategories)+len(values))
	categories := make([]model.ProductCategory, 0, len(model.KnownCategories)+len(values))
	add := func(c model.ProductCategory) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	for _, c := range model.KnownCategories {
		add(c)
	}
	for _, v := range values {
		add(model.ProductCategory(v))
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"category":   product.Category,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// Delete soft-deletes the product; gorm.ErrRecordNotFound when nothing matched
func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
