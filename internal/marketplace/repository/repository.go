package repository

import (
	"context"
	"time"

	"pickup-backend/internal/marketplace/domain"
)

// ItemsCollection is the Firestore collection holding marketplace listings
const ItemsCollection = "marketplace_items"

// ItemRepository defines the interface for marketplace item data access
type ItemRepository interface {
	// FindExpired returns sold or claimed items whose deleteAfter is at or before now
	FindExpired(ctx context.Context, now time.Time) ([]*domain.Item, error)

	// DeleteItems removes every listed item in one atomic batch. Deleting an
	// item that no longer exists is not an error.
	DeleteItems(ctx context.Context, ids []string) error
}
