package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/payment"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- In-memory blob store ---

type memBlobStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	loadErr error
	saves   int
	loads   int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{data: make(map[string][]byte)}
}

func (m *memBlobStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.data[key]
	if !ok {
		return nil, apperrors.NotFound("blob", key)
	}
	return append([]byte(nil), d...), nil
}

func (m *memBlobStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBlobStore) failSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *memBlobStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok
}

func (m *memBlobStore) counts() (loads, saves int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads, m.saves
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, shopperID string, cart *domain.Cart) error {
	return m.Called(ctx, shopperID, cart).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, shopperID string) error {
	return m.Called(ctx, shopperID).Error(0)
}

func (m *mockPublisher) PublishWishlistUpdated(ctx context.Context, shopperID string, wishlist *domain.Wishlist) error {
	return m.Called(ctx, shopperID, wishlist).Error(0)
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

// permissivePublisher accepts any event.
func permissivePublisher() *mockPublisher {
	p := new(mockPublisher)
	p.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishCartCleared", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishWishlistUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil).Maybe()
	return p
}

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) Submit(ctx context.Context, req *payment.Request) (*payment.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepository) ListByShopper(ctx context.Context, shopperID string, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, shopperID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
