package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/events"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductService interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	ListRecent(ctx context.Context, n int) ([]model.Product, error)
	FilterByCategories(ctx context.Context, categories []string) ([]model.Product, error)
	SearchText(ctx context.Context, query string) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.ProductCategory, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id uint, update model.ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, id uint) (*model.Product, error)
}

type productService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	opts        options
}

// NewProductService wires the catalog. db is used to run the delete cascade
// in one transaction.
func NewProductService(db *gorm.DB, productRepo repository.ProductRepository, opts ...Option) ProductService {
	return &productService{
		db:          db,
		productRepo: productRepo,
		opts:        buildOptions(opts),
	}
}

func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, translateStorageError(err)
	}
	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, translateStorageError(err)
	}
	return product, nil
}

// ListRecent returns up to n newest products. n <= 0 uses the configured
// default; n is capped at repository.MaxRecentLimit.
func (s *productService) ListRecent(ctx context.Context, n int) ([]model.Product, error) {
	if n <= 0 {
		n = s.opts.recentDefault
	}
	if n > repository.MaxRecentLimit {
		n = repository.MaxRecentLimit
	}

	if cached, ok := s.opts.recentCache.Get(ctx, n); ok {
		s.opts.metrics.ObserveRecentCache(true)
		return cached, nil
	}
	s.opts.metrics.ObserveRecentCache(false)

	products, err := s.productRepo.FindRecent(n)
	if err != nil {
		logger.Error("Failed to list recent products", err, map[string]interface{}{
			"limit": n,
		})
		return nil, translateStorageError(err)
	}

	s.opts.recentCache.Set(ctx, n, products)
	return products, nil
}

// FilterByCategories normalizes and de-duplicates the set. An empty set lists
// every product.
func (s *productService) FilterByCategories(ctx context.Context, categories []string) ([]model.Product, error) {
	seen := make(map[model.ProductCategory]struct{}, len(categories))
	normalized := make([]model.ProductCategory, 0, len(categories))
	for _, raw := range categories {
		c := model.NormalizeCategory(raw)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		normalized = append(normalized, c)
	}

	logger.Debug("Filtering products by categories", map[string]interface{}{
		"categories": normalized,
	})

	products, err := s.productRepo.FindByCategories(normalized)
	if err != nil {
		return nil, translateStorageError(err)
	}
	return products, nil
}

// SearchText matches every whitespace-separated token. A blank query lists
// every product.
func (s *productService) SearchText(ctx context.Context, query string) ([]model.Product, error) {
	tokens := strings.Fields(query)

	products, err := s.productRepo.Search(tokens)
	if err != nil {
		return nil, translateStorageError(err)
	}

	logger.Debug("Products searched", map[string]interface{}{
		"query": query,
		"count": len(products),
	})
	return products, nil
}

func (s *productService) Categories(ctx context.Context) ([]model.ProductCategory, error) {
	categories, err := s.productRepo.ListCategories()
	if err != nil {
		return nil, translateStorageError(err)
	}
	return categories, nil
}

func (s *productService) Create(ctx context.Context, product *model.Product) error {
	product.Category = model.NormalizeCategory(string(product.Category))
	if err := validateProduct(product); err != nil {
		logger.Warn("Rejected product create", map[string]interface{}{
			"name":  product.Name,
			"error": err.Error(),
		})
		return err
	}

	if err := s.productRepo.Create(product); err != nil {
		return translateStorageError(err)
	}

	s.opts.recentCache.Invalidate(ctx)

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"category":   product.Category,
	})
	return nil
}

func (s *productService) Update(ctx context.Context, id uint, update model.ProductUpdate) (*model.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(product)
	product.Category = model.NormalizeCategory(string(product.Category))
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, translateStorageError(err)
	}

	s.opts.recentCache.Invalidate(ctx)

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

// Delete soft-deletes the product and removes every favorite pointing at it
// in the same transaction. Affected users are notified after commit.
func (s *productService) Delete(ctx context.Context, id uint) (*model.Product, error) {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction", tx.Error)
		return nil, translateStorageError(tx.Error)
	}

	productRepo := repository.NewProductRepository(tx)
	favoriteRepo := repository.NewFavoriteRepository(tx)

	product, err := productRepo.FindByID(id)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateStorageError(err)
	}

	userIDs, err := favoriteRepo.UserIDsByProduct(id)
	if err != nil {
		tx.Rollback()
		return nil, translateStorageError(err)
	}

	removed, err := favoriteRepo.RemoveAllForProduct(id)
	if err != nil {
		tx.Rollback()
		return nil, translateStorageError(err)
	}

	if err := productRepo.Delete(id); err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateStorageError(err)
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit product delete", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, translateStorageError(err)
	}

	s.opts.recentCache.Invalidate(ctx)
	s.opts.metrics.AddCascadeRemoved(removed)
	for _, userID := range userIDs {
		s.opts.notifier.NotifyFavoriteChanged(userID, id, false)
	}
	if err := s.opts.publisher.Publish(ctx, events.ProductDeleted(id, removed)); err != nil {
		logger.Warn("Failed to publish product deleted event", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id":        id,
		"favorites_removed": removed,
	})
	return product, nil
}
