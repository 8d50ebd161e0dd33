package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), shopper)
	h.writeCart(w, r, cart, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	var req service.AddItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), shopper, req)
	h.writeCart(w, r, cart, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{lineId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	var req service.UpdateQuantityInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), shopper, chi.URLParam(r, "lineId"), req.Quantity)
	h.writeCart(w, r, cart, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{lineId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), shopper, chi.URLParam(r, "lineId"))
	h.writeCart(w, r, cart, err)
}

// ToggleVisibility handles POST /api/v1/cart/visibility
func (h *CartHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.ToggleVisibility(r.Context(), shopper)
	h.writeCart(w, r, cart, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.ClearCart(r.Context(), shopper)
	h.writeCart(w, r, cart, err)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, r *http.Request, cart *service.CartView, err error) {
	if cart == nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteResult(w, r, http.StatusOK, cart, err, h.logger)
}
