package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// WishlistItemInput holds a product to save. A missing slug is derived from
// the name.
type WishlistItemInput struct {
	ProductID string `json:"id" validate:"required,max=128"`
	Name      string `json:"name" validate:"required,max=500"`
	Price     int64  `json:"price" validate:"gte=0"`
	Image     string `json:"image" validate:"max=2048"`
	Slug      string `json:"slug" validate:"max=255"`
	Category  string `json:"category" validate:"max=128"`
}

func (in WishlistItemInput) entry() domain.WishlistEntry {
	return domain.WishlistEntry(in)
}

// WishlistView is the wishlist as returned to clients.
type WishlistView struct {
	Items []domain.WishlistEntry `json:"items"`
	Count int                    `json:"count"`
}

func newWishlistView(w *domain.Wishlist) *WishlistView {
	items := w.Entries()
	return &WishlistView{Items: items, Count: len(items)}
}

// ToggleResult reports the membership after a toggle.
type ToggleResult struct {
	InWishlist bool          `json:"in_wishlist"`
	Wishlist   *WishlistView `json:"wishlist"`
}

// WishlistService runs wishlist commands against per-shopper instances.
// Persistence errors follow the same contract as CartService.
type WishlistService struct {
	wishlists *registry[*domain.Wishlist]
	publisher event.Publisher
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(blobs repository.BlobStore, publisher event.Publisher, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		wishlists: newRegistry("wishlist", blobs, repository.WishlistKey, domain.NewWishlist, logger),
		publisher: publisher,
		logger:    logger,
	}
}

func (s *WishlistService) exec(ctx context.Context, shopperID string, cmd func(*domain.Wishlist) bool) (*WishlistView, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}

	var (
		view     *WishlistView
		snapshot *domain.Wishlist
	)
	_, err := s.wishlists.run(ctx, shopperID, func(w *domain.Wishlist) (bool, error) {
		changed := cmd(w)
		view = newWishlistView(w)
		if changed {
			snapshot = &domain.Wishlist{Items: w.Entries()}
		}
		return changed, nil
	})

	if snapshot != nil {
		if pubErr := s.publisher.PublishWishlistUpdated(ctx, shopperID, snapshot); pubErr != nil {
			logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to publish wishlist.updated event",
				slog.String("shopper_id", shopperID),
				slog.String("error", pubErr.Error()),
			)
		}
	}
	return view, err
}

// GetWishlist returns the shopper's wishlist, empty if none was ever saved.
func (s *WishlistService) GetWishlist(ctx context.Context, shopperID string) (*WishlistView, error) {
	return s.exec(ctx, shopperID, func(*domain.Wishlist) bool { return false })
}

// AddItem saves a product. Saving a product twice is a no-op.
func (s *WishlistService) AddItem(ctx context.Context, shopperID string, input WishlistItemInput) (*WishlistView, error) {
	return s.exec(ctx, shopperID, func(w *domain.Wishlist) bool {
		return w.AddItem(input.entry())
	})
}

// RemoveItem forgets a product. Unknown products are a no-op.
func (s *WishlistService) RemoveItem(ctx context.Context, shopperID, productID string) (*WishlistView, error) {
	return s.exec(ctx, shopperID, func(w *domain.Wishlist) bool {
		return w.RemoveItem(productID)
	})
}

// Contains reports whether the product is saved.
func (s *WishlistService) Contains(ctx context.Context, shopperID, productID string) (bool, error) {
	var found bool
	view, err := s.exec(ctx, shopperID, func(w *domain.Wishlist) bool {
		found = w.IsInWishlist(productID)
		return false
	})
	if view == nil {
		return false, err
	}
	return found, err
}

// Toggle saves the product when absent and forgets it when present.
func (s *WishlistService) Toggle(ctx context.Context, shopperID string, input WishlistItemInput) (*ToggleResult, error) {
	var in bool
	view, err := s.exec(ctx, shopperID, func(w *domain.Wishlist) bool {
		in = w.Toggle(input.entry())
		return true
	})
	if view == nil {
		return nil, err
	}
	return &ToggleResult{InWishlist: in, Wishlist: view}, err
}

// ClearWishlist forgets every product.
func (s *WishlistService) ClearWishlist(ctx context.Context, shopperID string) (*WishlistView, error) {
	return s.exec(ctx, shopperID, func(w *domain.Wishlist) bool {
		if len(w.Items) == 0 {
			return false
		}
		w.Clear()
		return true
	})
}

// SweepIdle evicts wishlists unused for longer than idle. Unsaved ones stay.
func (s *WishlistService) SweepIdle(idle time.Duration) int {
	return s.wishlists.sweep(idle)
}

// Flush retries saving every wishlist with unsaved changes and returns how
// many are still pending.
func (s *WishlistService) Flush(ctx context.Context) int {
	return s.wishlists.flush(ctx)
}
