package events

import "time"

// Event is a storefront domain event published after a committed mutation
type Event struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    uint      `json:"user_id,omitempty"`
	ProductID uint      `json:"product_id"`
	Affected  int64     `json:"affected,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeFavoriteAdded   = "favorite.added"
	EventTypeFavoriteRemoved = "favorite.removed"
	EventTypeProductDeleted  = "product.deleted"
)

func FavoriteAdded(userID, productID uint) Event {
	return Event{EventType: EventTypeFavoriteAdded, UserID: userID, ProductID: productID}
}

func FavoriteRemoved(userID, productID uint) Event {
	return Event{EventType: EventTypeFavoriteRemoved, UserID: userID, ProductID: productID}
}

// ProductDeleted carries the number of favorites removed with the product
func ProductDeleted(productID uint, favoritesRemoved int64) Event {
	return Event{EventType: EventTypeProductDeleted, ProductID: productID, Affected: favoritesRemoved}
}
