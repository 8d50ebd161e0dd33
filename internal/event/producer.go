package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// Storefront domain topics.
var (
	TopicCartUpdated     = pkgkafka.Topic(AggregateTypeCart, "updated")
	TopicCartCleared     = pkgkafka.Topic(AggregateTypeCart, "cleared")
	TopicWishlistUpdated = pkgkafka.Topic(AggregateTypeWishlist, "updated")
	TopicOrderPlaced     = pkgkafka.Topic(AggregateTypeOrder, "placed")
)

// SourceStorefront identifies events published by this service.
const SourceStorefront = "storefront-service"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	ShopperID string            `json:"shopper_id"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     int64             `json:"total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	ShopperID string `json:"shopper_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	ShopperID  string   `json:"shopper_id"`
	ProductIDs []string `json:"product_ids"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID       string `json:"order_id"`
	ShopperID     string `json:"shopper_id"`
	ItemCount     int    `json:"item_count"`
	Subtotal      int64  `json:"subtotal"`
	ShippingCost  int64  `json:"shipping_cost"`
	GrandTotal    int64  `json:"grand_total"`
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}

// Publisher is the port the service layer uses to announce state changes.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, shopperID string, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, shopperID string) error
	PublishWishlistUpdated(ctx context.Context, shopperID string, wishlist *domain.Wishlist) error
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer. A nil logger uses slog.Default.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any, metadata map[string]string) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	for k, v := range metadata {
		evt.WithMetadata(k, v)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "domain event published",
		slog.String("topic", topic),
		slog.String("aggregate_type", aggregateType),
	)
	return nil
}

// PublishCartUpdated publishes a cart.updated event with the full line list.
func (p *Producer) PublishCartUpdated(ctx context.Context, shopperID string, cart *domain.Cart) error {
	return p.publish(ctx, TopicCartUpdated, shopperID, AggregateTypeCart, CartUpdatedData{
		ShopperID: shopperID,
		Lines:     cart.Lines(),
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}, nil)
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, shopperID string) error {
	return p.publish(ctx, TopicCartCleared, shopperID, AggregateTypeCart, CartClearedData{ShopperID: shopperID}, nil)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, shopperID string, wishlist *domain.Wishlist) error {
	ids := make([]string, len(wishlist.Items))
	for i, e := range wishlist.Items {
		ids[i] = e.ProductID
	}
	return p.publish(ctx, TopicWishlistUpdated, shopperID, AggregateTypeWishlist, WishlistUpdatedData{
		ShopperID:  shopperID,
		ProductIDs: ids,
	}, nil)
}

// PublishOrderPlaced publishes an order.placed event keyed by the shopper so
// it is ordered after the cart events for the same shopper.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderPlaced, order.ShopperID, AggregateTypeOrder, OrderPlacedData{
		OrderID:       order.ID,
		ShopperID:     order.ShopperID,
		ItemCount:     order.ItemCount(),
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		GrandTotal:    order.GrandTotal,
		PaymentMethod: string(order.PaymentMethod),
		TransactionID: order.TransactionID,
	}, map[string]string{"order_id": order.ID})
}
