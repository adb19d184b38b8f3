package repository

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	appErrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrFavoriteExists   = errors.New("favorite already exists")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// FavoriteRepository stores (user, product) pairs. Uniqueness is enforced by
// idx_favorites_user_product, not by callers.
type FavoriteRepository interface {
	Exists(userID, productID uint) (bool, error)
	Add(userID, productID uint) (*model.Favorite, error)
	Remove(userID, productID uint) error
	ListByUser(userID uint) ([]model.Favorite, error)
	ListEntries(userID uint) ([]model.FavoriteEntry, error)
	ListProductsByUser(userID uint) ([]model.Product, error)
	CountByUser(userID uint) (int64, error)
	CountByProduct(productID uint) (int64, error)
	UserIDsByProduct(productID uint) ([]uint, error)
	RemoveAllForProduct(productID uint) (int64, error)
	RemoveDangling() (int64, error)
	RemoveDanglingForUser(userID uint) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Exists(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite existence", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

// Add inserts the pair if absent. ErrFavoriteExists when the pair is present,
// including when a concurrent insert won.
func (r *favoriteRepository) Add(userID, productID uint) (*model.Favorite, error) {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	favorite := &model.Favorite{UserID: userID, ProductID: productID}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(favorite)
	if result.Error != nil {
		if appErrors.IsDuplicateKey(result.Error) {
			return nil, ErrFavoriteExists
		}
		logger.Error("Failed to create favorite in database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrFavoriteExists
	}

	logger.Debug("Favorite created in database", map[string]interface{}{
		"favorite_id": favorite.ID,
		"user_id":     userID,
		"product_id":  productID,
	})
	return favorite, nil
}

// Remove hard-deletes the pair. ErrFavoriteNotFound when nothing was deleted.
func (r *favoriteRepository) Remove(userID, productID uint) error {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	result := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorite from database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListByUser returns the user's raw rows, newest first. Rows may reference
// deleted products.
func (r *favoriteRepository) ListByUser(userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorites by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return favorites, nil
}

// ListEntries joins the user's favorites with live products, newest first.
// Rows whose product is missing or soft-deleted are excluded.
func (r *favoriteRepository) ListEntries(userID uint) ([]model.FavoriteEntry, error) {
	logger.Debug("Finding favorite entries by user ID", map[string]interface{}{
		"user_id": userID,
	})

	var favorites []model.Favorite
	err := r.db.Model(&model.Favorite{}).
		Select("favorites.*").
		Joins("INNER JOIN products ON products.id = favorites.product_id AND products.deleted_at IS NULL").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Order("favorites.id DESC").
		Preload("Product").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorite entries by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	entries := make([]model.FavoriteEntry, 0, len(favorites))
	for _, f := range favorites {
		if f.Product == nil {
			continue
		}
		entries = append(entries, model.FavoriteEntry{
			FavoriteID: f.ID,
			Product:    *f.Product,
			AddedAt:    f.CreatedAt,
		})
	}

	logger.Debug("Favorite entries found by user ID", map[string]interface{}{
		"user_id": userID,
		"count":   len(entries),
	})
	return entries, nil
}

func (r *favoriteRepository) ListProductsByUser(userID uint) ([]model.Product, error) {
	entries, err := r.ListEntries(userID)
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.Product)
	}
	return products, nil
}

func (r *favoriteRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *favoriteRepository) CountByProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *favoriteRepository) UserIDsByProduct(productID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.Model(&model.Favorite{}).
		Where("product_id = ?", productID).
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func (r *favoriteRepository) RemoveAllForProduct(productID uint) (int64, error) {
	logger.Debug("Deleting favorites for product", map[string]interface{}{
		"product_id": productID,
	})

	result := r.db.Where("product_id = ?", productID).Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorites for product", result.Error, map[string]interface{}{
			"product_id": productID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RemoveDangling deletes every row whose product is missing or soft-deleted
func (r *favoriteRepository) RemoveDangling() (int64, error) {
	result := r.db.Where("product_id NOT IN (?)", r.liveProductIDs()).Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete dangling favorites", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *favoriteRepository) RemoveDanglingForUser(userID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND product_id NOT IN (?)", userID, r.liveProductIDs()).
		Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete dangling favorites for user", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *favoriteRepository) liveProductIDs() *gorm.DB {
	return r.db.Session(&gorm.Session{NewDB: true}).Model(&model.Product{}).Select("id")
}
