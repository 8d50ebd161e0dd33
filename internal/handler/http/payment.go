package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/payment"
	"github.com/utafrali/storefront/pkg/httputil"
)

// PaymentHandler serves the payment endpoint that remote.Gateway calls.
// Request and response bodies are the bare payment contract, not the API
// envelope.
type PaymentHandler struct {
	gateway payment.Gateway
	logger  *slog.Logger
}

// NewPaymentHandler creates a payment endpoint backed by gateway.
func NewPaymentHandler(gateway payment.Gateway, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, logger: logger}
}

// Submit handles POST /api/payment
func (h *PaymentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req payment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, errors.New("invalid request body: "+err.Error()))
		return
	}

	res, err := h.gateway.Submit(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
