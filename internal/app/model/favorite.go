package model

import (
	"time"
)

// Favorite is a user-to-product bookmark. The (user_id, product_id) pair is
// unique; rows are hard-deleted.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_product,priority:1" json:"user_id"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_favorites_user_product,priority:2" json:"product_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteEntry is a favorite row joined with its product
type FavoriteEntry struct {
	FavoriteID uint      `json:"favoriteId"`
	Product    Product   `json:"product"`
	AddedAt    time.Time `json:"addedAt"`
}
