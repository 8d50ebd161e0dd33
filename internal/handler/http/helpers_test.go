package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/payment/simulator"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Test doubles
// ============================================================================

type nopPublisher struct{}

func (nopPublisher) PublishCartUpdated(context.Context, string, *domain.Cart) error {
	return nil
}

func (nopPublisher) PublishCartCleared(context.Context, string) error {
	return nil
}

func (nopPublisher) PublishWishlistUpdated(context.Context, string, *domain.Wishlist) error {
	return nil
}

func (nopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error {
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) ListByShopper(_ context.Context, shopperID string, limit int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.ShopperID == shopperID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ============================================================================
// Test server
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	mr      *miniredis.Miniredis
	orders  *memOrders
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := testLogger()
	blobs := redisrepo.NewBlobStore(client, 0)
	orders := &memOrders{}
	gateway := simulator.NewGateway(0, logger)

	carts := service.NewCartService(blobs, nopPublisher{}, logger)
	wishlists := service.NewWishlistService(blobs, nopPublisher{}, logger)
	checkout := service.NewCheckoutService(carts, gateway, orders, nopPublisher{}, domain.DefaultShippingPolicy(), logger)

	router := NewRouter(carts, wishlists, checkout, gateway, health.NewHandler(), logger, RouterConfig{
		CORS:       middleware.DefaultCORSConfig(),
		PprofCIDRs: []string{"127.0.0.1/32"},
	})

	return &testServer{mr: mr, orders: orders, handler: router}
}

// do sends a request as shopper. An empty shopper omits the header.
func (s *testServer) do(t *testing.T, method, path, shopper string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if shopper != "" {
		req.Header.Set(middleware.ShopperHeader, shopper)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rec)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func shirt(size string, qty int) service.AddItemInput {
	return service.AddItemInput{
		ProductID: "p1",
		Name:      "Linen Shirt",
		Price:     50,
		Quantity:  qty,
		Image:     "shirt.jpg",
		Size:      size,
		Color:     "Red",
	}
}
