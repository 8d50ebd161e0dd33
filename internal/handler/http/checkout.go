package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout and order history.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// Quote handles GET /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	q, err := h.service.Quote(r.Context(), shopper)
	if q == nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteResult(w, r, http.StatusOK, q, err, h.logger)
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	var req service.PlaceOrderInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), shopper, req)
	if order == nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteResult(w, r, http.StatusCreated, order, err, h.logger)
}

// ListOrders handles GET /api/v1/orders
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), shopper)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	httputil.WriteData(w, http.StatusOK, orders)
}
