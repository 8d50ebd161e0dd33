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

// AddItemInput holds the parameters for adding an item to the cart. Name,
// price and image are catalog snapshots and are not re-validated later.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
	Name      string `json:"name" validate:"required,max=500"`
	Price     int64  `json:"price" validate:"gte=0,lte=1000000000000"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=1000000"`
	Image     string `json:"image" validate:"max=2048"`
	Size      string `json:"size" validate:"required,max=64"`
	Color     string `json:"color" validate:"required,max=64"`
	Fabric    string `json:"fabric" validate:"max=64"`
}

// UpdateQuantityInput holds the new quantity for a line. Values below 1 are
// stored as 1.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as returned to clients.
type CartView struct {
	Items     []domain.CartLine `json:"items"`
	IsOpen    bool              `json:"is_open"`
	ItemCount int               `json:"item_count"`
	Total     int64             `json:"total"`
}

func newCartView(c *domain.Cart) *CartView {
	return &CartView{
		Items:     c.Lines(),
		IsOpen:    c.IsOpen,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	}
}

// CartService runs cart commands against per-shopper cart instances.
//
// Mutating methods return the resulting view. When the view is non-nil and
// the error satisfies apperrors.IsPersistence, the change was applied but
// not saved; it is retried on the shopper's next command.
type CartService struct {
	carts     *registry[*domain.Cart]
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(blobs repository.BlobStore, publisher event.Publisher, logger *slog.Logger) *CartService {
	return &CartService{
		carts:     newRegistry("cart", blobs, repository.CartKey, domain.NewCart, logger),
		publisher: publisher,
		logger:    logger,
	}
}

// exec runs cmd and builds the view. snapshot is a copy of the cart when
// cmd changed it, for event payloads; it is set even if the save failed.
func (s *CartService) exec(ctx context.Context, shopperID string, cmd func(*domain.Cart) (bool, error)) (view *CartView, snapshot *domain.Cart, err error) {
	if shopperID == "" {
		return nil, nil, apperrors.InvalidInput("shopper id is required")
	}

	_, err = s.carts.run(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		changed, err := cmd(c)
		if err != nil {
			return false, err
		}
		view = newCartView(c)
		if changed {
			snapshot = &domain.Cart{Items: c.Lines(), IsOpen: c.IsOpen, NextSeq: c.NextSeq}
		}
		return changed, nil
	})
	return view, snapshot, err
}

// mutate runs cmd and publishes cart.updated when it changed the cart.
func (s *CartService) mutate(ctx context.Context, shopperID string, cmd func(*domain.Cart) (bool, error)) (*CartView, error) {
	view, snapshot, err := s.exec(ctx, shopperID, cmd)
	if snapshot != nil {
		if pubErr := s.publisher.PublishCartUpdated(ctx, shopperID, snapshot); pubErr != nil {
			s.logFor(ctx).ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("shopper_id", shopperID),
				slog.String("error", pubErr.Error()),
			)
		}
	}
	return view, err
}

func (s *CartService) logFor(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// GetCart returns the shopper's cart, empty if none was ever saved.
func (s *CartService) GetCart(ctx context.Context, shopperID string) (*CartView, error) {
	view, _, err := s.exec(ctx, shopperID, func(*domain.Cart) (bool, error) { return false, nil })
	return view, err
}

// AddItem merges the item into an existing line for the same variant or adds
// a new line, and opens the cart.
func (s *CartService) AddItem(ctx context.Context, shopperID string, input AddItemInput) (*CartView, error) {
	view, err := s.mutate(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		if _, err := c.AddItem(domain.LineCandidate(input)); err != nil {
			return false, err
		}
		return true, nil
	})
	if view != nil {
		s.logFor(ctx).InfoContext(ctx, "item added to cart",
			slog.String("product_id", input.ProductID),
			slog.String("size", input.Size),
			slog.String("color", input.Color),
			slog.Int("quantity", input.Quantity),
		)
	}
	return view, err
}

// RemoveItem deletes a line. Unknown line IDs leave the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, shopperID, lineID string) (*CartView, error) {
	return s.mutate(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		return c.RemoveItem(lineID), nil
	})
}

// UpdateQuantity sets a line's quantity, clamped to at least 1. Unknown line
// IDs leave the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, shopperID, lineID string, quantity int) (*CartView, error) {
	return s.mutate(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		return c.UpdateQuantity(lineID, quantity)
	})
}

// ToggleVisibility flips whether the cart drawer is open.
func (s *CartService) ToggleVisibility(ctx context.Context, shopperID string) (*CartView, error) {
	return s.mutate(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		c.ToggleVisibility()
		return true, nil
	})
}

// ClearCart removes every line.
func (s *CartService) ClearCart(ctx context.Context, shopperID string) (*CartView, error) {
	view, snapshot, err := s.exec(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		if c.IsEmpty() {
			return false, nil
		}
		c.Clear()
		return true, nil
	})
	if snapshot != nil {
		s.publishCleared(ctx, shopperID)
	}
	return view, err
}

func (s *CartService) publishCleared(ctx context.Context, shopperID string) {
	if err := s.publisher.PublishCartCleared(ctx, shopperID); err != nil {
		s.logFor(ctx).ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
	}
}

// Lines returns a copy of the shopper's cart lines.
func (s *CartService) Lines(ctx context.Context, shopperID string) ([]domain.CartLine, error) {
	view, err := s.GetCart(ctx, shopperID)
	if view == nil {
		return nil, err
	}
	return view.Items, err
}

// Checkout hands the current lines and subtotal to submit while holding the
// shopper's cart, so no command can change it mid-payment. An empty cart is
// rejected before submit is called. When submit succeeds the cart is cleared.
func (s *CartService) Checkout(ctx context.Context, shopperID string, submit func(lines []domain.CartLine, subtotal int64) error) (*CartView, error) {
	view, snapshot, err := s.exec(ctx, shopperID, func(c *domain.Cart) (bool, error) {
		if c.IsEmpty() {
			return false, apperrors.InvalidInput("cart is empty")
		}
		if err := submit(c.Lines(), c.Total()); err != nil {
			return false, err
		}
		c.Clear()
		return true, nil
	})
	if snapshot != nil {
		s.publishCleared(ctx, shopperID)
	}
	return view, err
}

// SweepIdle evicts carts unused for longer than idle. Unsaved carts stay.
func (s *CartService) SweepIdle(idle time.Duration) int {
	return s.carts.sweep(idle)
}

// Flush retries saving every cart with unsaved changes and returns how many
// are still pending.
func (s *CartService) Flush(ctx context.Context) int {
	return s.carts.flush(ctx)
}
