package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Store keys. Each shopper owns one blob per store.
const (
	CartKeyPrefix     = "zavero-cart:"
	WishlistKeyPrefix = "wishlist-storage:"
)

// CartKey returns the blob key of a shopper's cart.
func CartKey(shopperID string) string { return CartKeyPrefix + shopperID }

// WishlistKey returns the blob key of a shopper's wishlist.
func WishlistKey(shopperID string) string { return WishlistKeyPrefix + shopperID }

// BlobStore persists opaque serialized store state by key.
type BlobStore interface {
	// Load returns the blob stored under key. A missing key yields an error
	// wrapping apperrors.ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the blob stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// OrderRepository records placed orders.
type OrderRepository interface {
	// Create inserts the order and its lines.
	Create(ctx context.Context, o *domain.Order) error

	// ListByShopper returns up to limit orders, most recent first.
	ListByShopper(ctx context.Context, shopperID string, limit int) ([]domain.Order, error)
}
