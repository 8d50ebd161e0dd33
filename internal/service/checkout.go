package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/payment"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

// OrderHistoryLimit caps the number of orders returned by ListOrders.
const OrderHistoryLimit = 50

// PlaceOrderInput is the shopper's checkout form.
type PlaceOrderInput struct {
	FirstName     string `json:"first_name" validate:"required,min=2,max=100"`
	LastName      string `json:"last_name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Address       string `json:"address" validate:"required,min=5,max=255"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	Zip           string `json:"zip" validate:"required,min=4,max=20"`
	Country       string `json:"country" validate:"required,min=2,max=100"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cod"`
}

// CheckoutService prices carts and turns them into paid orders.
type CheckoutService struct {
	carts     *CartService
	gateway   payment.Gateway
	orders    repository.OrderRepository
	publisher event.Publisher
	policy    domain.ShippingPolicy
	logger    *slog.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts *CartService,
	gateway payment.Gateway,
	orders repository.OrderRepository,
	publisher event.Publisher,
	policy domain.ShippingPolicy,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		gateway:   gateway,
		orders:    orders,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// Quote prices the shopper's current cart.
func (s *CheckoutService) Quote(ctx context.Context, shopperID string) (*domain.Quote, error) {
	view, err := s.carts.GetCart(ctx, shopperID)
	if view == nil {
		return nil, err
	}
	q := s.policy.Quote(view.Total)
	return &q, err
}

// PlaceOrder submits the shopper's cart for payment. On success the order is
// recorded, the cart is cleared and the order is returned. A declined or
// failed payment leaves the cart untouched.
//
// Recording the order happens after the payment has been taken, so a failed
// insert is logged rather than returned. A persistence error from clearing
// the cart is returned alongside the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, shopperID string, input PlaceOrderInput) (*domain.Order, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	log := logger.WithContext(ctx, s.logger)

	method := domain.PaymentMethod(input.PaymentMethod)
	contact := domain.Contact{FirstName: input.FirstName, LastName: input.LastName, Email: input.Email}
	addr := domain.Address{Address: input.Address, City: input.City, Zip: input.Zip, Country: input.Country}

	var order *domain.Order
	_, err := s.carts.Checkout(ctx, shopperID, func(lines []domain.CartLine, subtotal int64) error {
		quote := s.policy.Quote(subtotal)
		orderID := uuid.NewString()

		req := payment.NewRequest(lines, quote, method, contact, addr)
		req.OrderID = orderID

		res, err := s.submitPayment(ctx, req)
		if err != nil {
			return s.paymentError(ctx, err)
		}
		if !res.Success {
			paymentFailures.WithLabelValues("declined").Inc()
			msg := res.Message
			if msg == "" {
				msg = "payment was declined"
			}
			log.WarnContext(ctx, "payment declined",
				slog.String("order_id", orderID),
				slog.String("gateway", s.gateway.Name()),
				slog.String("message", msg),
			)
			return apperrors.PaymentFailed(msg)
		}

		order = &domain.Order{
			ID:            orderID,
			ShopperID:     shopperID,
			Status:        domain.OrderStatusPlaced,
			Lines:         lines,
			Subtotal:      quote.Subtotal,
			ShippingCost:  quote.ShippingCost,
			GrandTotal:    quote.GrandTotal,
			PaymentMethod: method,
			TransactionID: res.TransactionID,
			Contact:       contact,
			Shipping:      addr,
			CreatedAt:     s.now().UTC(),
		}
		return nil
	})
	if order == nil {
		return nil, err
	}

	ordersPlaced.WithLabelValues(string(method)).Inc()
	log.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("transaction_id", order.TransactionID),
		slog.Int64("grand_total", order.GrandTotal),
		slog.String("payment_method", string(method)),
	)

	if recErr := s.orders.Create(ctx, order); recErr != nil {
		log.ErrorContext(ctx, "failed to record paid order",
			slog.String("order_id", order.ID),
			slog.String("transaction_id", order.TransactionID),
			slog.String("error", recErr.Error()),
		)
	}
	if pubErr := s.publisher.PublishOrderPlaced(ctx, order); pubErr != nil {
		log.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", pubErr.Error()),
		)
	}

	return order, err
}

// submitPayment calls the gateway inside a span.
func (s *CheckoutService) submitPayment(ctx context.Context, req *payment.Request) (res *payment.Result, err error) {
	ctx, span := tracing.Tracer("storefront/checkout").Start(ctx, "payment.Submit")
	span.SetAttributes(
		attribute.String("payment.gateway", s.gateway.Name()),
		attribute.String("payment.method", string(req.PaymentMethod)),
		attribute.Int64("payment.amount", req.Amount),
		attribute.String("order.id", req.OrderID),
	)
	defer func() { tracing.End(span, err) }()

	return s.gateway.Submit(ctx, req)
}

// paymentError maps a gateway error. Structured errors and cancellations
// pass through; anything else becomes PaymentFailed.
func (s *CheckoutService) paymentError(ctx context.Context, err error) error {
	logger.WithContext(ctx, s.logger).ErrorContext(ctx, "payment submission failed",
		slog.String("gateway", s.gateway.Name()),
		slog.String("error", err.Error()),
	)

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		paymentFailures.WithLabelValues("gateway_error").Inc()
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		paymentFailures.WithLabelValues("canceled").Inc()
		return fmt.Errorf("submit payment: %w", err)
	default:
		paymentFailures.WithLabelValues("gateway_error").Inc()
		return apperrors.PaymentFailed("payment could not be processed")
	}
}

// ListOrders returns the shopper's most recent orders first.
func (s *CheckoutService) ListOrders(ctx context.Context, shopperID string) ([]domain.Order, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}
	orders, err := s.orders.ListByShopper(ctx, shopperID, OrderHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
