package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// membershipResponse answers a wishlist membership query.
type membershipResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetWishlist(r.Context(), shopper)
	h.writeWishlist(w, r, view, err)
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	var req service.WishlistItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.AddItem(r.Context(), shopper, req)
	h.writeWishlist(w, r, view, err)
}

// Toggle handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	var req service.WishlistItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.Toggle(r.Context(), shopper, req)
	if res == nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteResult(w, r, http.StatusOK, res, err, h.logger)
}

// Contains handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	in, err := h.service.Contains(r.Context(), shopper, productID)
	httputil.WriteResult(w, r, http.StatusOK, membershipResponse{ProductID: productID, InWishlist: in}, err, h.logger)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	view, err := h.service.RemoveItem(r.Context(), shopper, chi.URLParam(r, "productId"))
	h.writeWishlist(w, r, view, err)
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	shopper, ok := shopperID(w, r)
	if !ok {
		return
	}

	view, err := h.service.ClearWishlist(r.Context(), shopper)
	h.writeWishlist(w, r, view, err)
}

func (h *WishlistHandler) writeWishlist(w http.ResponseWriter, r *http.Request, view *service.WishlistView, err error) {
	if view == nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteResult(w, r, http.StatusOK, view, err, h.logger)
}
