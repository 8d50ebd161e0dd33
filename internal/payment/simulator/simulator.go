package simulator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/payment"
)

// DefaultDelay matches the processing time of the storefront's payment stub.
const DefaultDelay = 1500 * time.Millisecond

// Gateway approves every payment after a fixed delay. It stands in for a
// real processor in development and demos.
type Gateway struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewGateway creates a simulator that waits delay before answering.
func NewGateway(delay time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{delay: delay, logger: logger}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "simulator"
}

// Submit waits for the configured delay, then approves the payment. It
// returns ctx.Err() if the context ends first.
func (g *Gateway) Submit(ctx context.Context, req *payment.Request) (*payment.Result, error) {
	g.logger.InfoContext(ctx, "processing payment",
		slog.Int64("amount", req.Amount),
		slog.String("payment_method", string(req.PaymentMethod)),
	)

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &payment.Result{
		Success:       true,
		TransactionID: NewTransactionID(),
	}, nil
}

// NewTransactionID returns "txn_" followed by nine random characters.
func NewTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
