package db

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted type in migration order
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.Favorite{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the demo catalog when the products table is empty
func Seed() error {
	return SeedProducts(DB)
}

// DemoProducts is the starter catalog used by Seed and local tooling
func DemoProducts() []model.Product {
	return []model.Product{
		{
			Name:        "Air Max 90",
			Brand:       "Nike",
			Category:    model.CategoryShoes,
			Images:      []string{"https://cdn.example.com/products/air-max-90.jpg"},
			Description: "Classic running silhouette with visible air cushioning",
			Price:       129.99,
		},
		{
			Name:        "Canvas Tote Bag",
			Brand:       "Everlane",
			Category:    model.CategoryBags,
			Images:      []string{"https://cdn.example.com/products/canvas-tote.jpg"},
			Description: "Heavyweight organic cotton tote",
			Price:       35,
		},
		{
			Name:        "Oxford Shirt",
			Brand:       "Uniqlo",
			Category:    model.CategoryMen,
			Images:      []string{"https://cdn.example.com/products/oxford-shirt.jpg"},
			Description: "Slim fit button-down oxford",
			Price:       39.9,
		},
		{
			Name:        "Kids Rain Jacket",
			Brand:       "Patagonia",
			Category:    model.CategoryKids,
			Images:      []string{"https://cdn.example.com/products/kids-rain-jacket.jpg"},
			Description: "Packable waterproof shell for kids",
			Price:       79,
		},
		{
			Name:        "Leather Belt",
			Brand:       "Levi's",
			Category:    model.CategoryAccessories,
			Images:      []string{"https://cdn.example.com/products/leather-belt.jpg"},
			Description: "Full grain leather belt with metal buckle",
			Price:       45,
		},
	}
}

// SeedProducts inserts DemoProducts when no product exists
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding demo products...")

	products := DemoProducts()
	if err := db.Create(&products).Error; err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_products": len(products),
	})
	return nil
}
