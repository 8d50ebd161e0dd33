package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/payment"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const (
	serviceName = "payment-service"
	paymentPath = "/api/payment"
	maxBody     = 1 << 20
)

// Gateway submits payments to an HTTP payment service speaking the
// storefront payment contract.
type Gateway struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewGateway creates a gateway posting to baseURL + /api/payment.
func NewGateway(client *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "remote"
}

// Submit posts the request. Non-2xx answers are translated with
// httpclient.ParseResponseError; an open breaker or unreachable service
// becomes ServiceUnavailable.
func (g *Gateway) Submit(ctx context.Context, req *payment.Request) (*payment.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	headers := map[string]string{"Accept": "application/json"}
	if req.OrderID != "" {
		headers["Idempotency-Key"] = req.OrderID
	}

	resp, err := g.client.Post(ctx, g.baseURL+paymentPath, "application/json", bytes.NewReader(body), headers)
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, err
		case errors.Is(err, httpclient.ErrCircuitOpen):
			return nil, apperrors.ServiceUnavailable("payment service circuit open")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			g.logger.WarnContext(ctx, "payment service unreachable", slog.String("error", err.Error()))
			return nil, apperrors.ServiceUnavailable("payment service unreachable")
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}

	var result payment.Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if result.Success && result.TransactionID == "" {
		return nil, fmt.Errorf("payment response missing transaction id")
	}

	g.logger.DebugContext(ctx, "payment submitted",
		slog.String("order_id", req.OrderID),
		slog.Bool("success", result.Success),
		slog.Int("status", resp.StatusCode),
	)
	return &result, nil
}
