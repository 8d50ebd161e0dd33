package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newTestCartService(store *memBlobStore, pub *mockPublisher) *CartService {
	return NewCartService(store, pub, newTestLogger())
}

func shirtInput(size string, qty int) AddItemInput {
	return AddItemInput{
		ProductID: "p1",
		Name:      "Linen Shirt",
		Price:     50,
		Quantity:  qty,
		Image:     "shirt.jpg",
		Size:      size,
		Color:     "Red",
	}
}

func TestCartService_GetCart_Empty(t *testing.T) {
	store := newMemBlobStore()
	svc := newTestCartService(store, permissivePublisher())

	view, err := svc.GetCart(context.Background(), "s-1")

	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.False(t, view.IsOpen)
	assert.Zero(t, view.Total)

	_, saves := store.counts()
	assert.Zero(t, saves, "reads must not write")
}

func TestCartService_AddItem_MergesAndSaves(t *testing.T) {
	store := newMemBlobStore()
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, "s-1", mock.AnythingOfType("*domain.Cart")).Return(nil).Twice()
	svc := newTestCartService(store, pub)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s-1", shirtInput("M", 1))
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "s-1", shirtInput("M", 2))
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, domain.DefaultFabric, view.Items[0].Fabric)
	assert.Equal(t, int64(150), view.Total)
	assert.Equal(t, 3, view.ItemCount)
	assert.True(t, view.IsOpen)

	raw, ok := store.get("zavero-cart:s-1")
	require.True(t, ok)
	var saved domain.Cart
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, 3, saved.Items[0].Quantity)
	assert.Equal(t, int64(1), saved.NextSeq)

	pub.AssertExpectations(t)
}

func TestCartService_AddItem_Invalid(t *testing.T) {
	store := newMemBlobStore()
	pub := new(mockPublisher)
	svc := newTestCartService(store, pub)

	in := shirtInput("M", 1)
	in.Color = ""
	view, err := svc.AddItem(context.Background(), "s-1", in)

	assert.Nil(t, view)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	_, saves := store.counts()
	assert.Zero(t, saves)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_RequiresShopper(t *testing.T) {
	svc := newTestCartService(newMemBlobStore(), permissivePublisher())

	_, err := svc.GetCart(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCartService_RemoveAndUpdate(t *testing.T) {
	store := newMemBlobStore()
	svc := newTestCartService(store, permissivePublisher())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s-1", shirtInput("M", 1))
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "s-1", shirtInput("L", 1))
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	view, err = svc.UpdateQuantity(ctx, "s-1", "line-2", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[1].Quantity)

	view, err = svc.UpdateQuantity(ctx, "s-1", "line-2", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(250), view.Total)

	_, savesBefore := store.counts()
	view, err = svc.RemoveItem(ctx, "s-1", "line-404")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	_, savesAfter := store.counts()
	assert.Equal(t, savesBefore, savesAfter, "no-op removal must not write")

	view, err = svc.RemoveItem(ctx, "s-1", "line-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "line-2", view.Items[0].ID)
}

func TestCartService_ToggleVisibility(t *testing.T) {
	svc := newTestCartService(newMemBlobStore(), permissivePublisher())
	ctx := context.Background()

	view, err := svc.ToggleVisibility(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, view.IsOpen)

	view, err = svc.ToggleVisibility(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, view.IsOpen)
}

func TestCartService_ClearCart(t *testing.T) {
	store := newMemBlobStore()
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, "s-1", mock.Anything).Return(nil).Once()
	pub.On("PublishCartCleared", mock.Anything, "s-1").Return(nil).Once()
	svc := newTestCartService(store, pub)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s-1", shirtInput("M", 1))
	require.NoError(t, err)

	view, err := svc.ClearCart(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.ClearCart(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	pub.AssertExpectations(t)
}

func TestCartService_RehydratesFromStore(t *testing.T) {
	store := newMemBlobStore()
	ctx := context.Background()

	first := newTestCartService(store, permissivePublisher())
	_, err := first.AddItem(ctx, "s-1", shirtInput("M", 2))
	require.NoError(t, err)
	_, err = first.AddItem(ctx, "s-1", shirtInput("L", 1))
	require.NoError(t, err)

	second := newTestCartService(store, permissivePublisher())
	view, err := second.GetCart(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "line-1", view.Items[0].ID)
	assert.Equal(t, 2, view.Items[0].Quantity)

	view, err = second.AddItem(ctx, "s-1", shirtInput("S", 1))
	require.NoError(t, err)
	assert.Equal(t, "line-3", view.Items[2].ID)
}

func TestCartService_LoadsOncePerInstance(t *testing.T) {
	store := newMemBlobStore()
	svc := newTestCartService(store, permissivePublisher())
	ctx := context.Background()

	for range 3 {
		_, err := svc.GetCart(ctx, "s-1")
		require.NoError(t, err)
	}
	loads, _ := store.counts()
	assert.Equal(t, 1, loads)
}

func TestCartService_PersistenceFailureKeepsState(t *testing.T) {
	store := newMemBlobStore()
	svc := newTestCartService(store, permissivePublisher())
	ctx := context.Background()
	before := testutil.ToFloat64(persistenceFailures.WithLabelValues("cart"))

	store.failSaves(errors.New("quota exceeded"))
	view, err := svc.AddItem(ctx, "s-1", shirtInput("M", 1))

	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	require.NotNil(t, view)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(persistenceFailures.WithLabelValues("cart")))

	_, ok := store.get("zavero-cart:s-1")
	assert.False(t, ok)

	view, err = svc.GetCart(ctx, "s-1")
	assert.True(t, apperrors.IsPersistence(err))
	assert.Len(t, view.Items, 1, "in-memory state survives")

	store.failSaves(nil)
	view, err = svc.GetCart(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	raw, ok := store.get("zavero-cart:s-1")
	require.True(t, ok, "dirty state is saved on the next command")
	assert.Contains(t, string(raw), `"product_id":"p1"`)
}

func TestCartService_LoadFailure(t *testing.T) {
	store := newMemBlobStore()
	store.loadErr = errors.New("connection refused")
	svc := newTestCartService(store, permissivePublisher())
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "s-1", shirtInput("M", 1))

	assert.Nil(t, view)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))

	store.mu.Lock()
	store.loadErr = nil
	store.mu.Unlock()

	view, err = svc.AddItem(ctx, "s-1", shirtInput("M", 1))
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCartService_CorruptBlobStartsEmpty(t *testing.T) {
	store := newMemBlobStore()
	require.NoError(t, store.Save(context.Background(), "zavero-cart:s-1", []byte(`{"items":`)))
	svc := newTestCartService(store, permissivePublisher())

	view, err := svc.GetCart(context.Background(), "s-1")

	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartService_PublishErrorIsNotReturned(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, "s-1", mock.Anything).Return(errors.New("broker down"))
	svc := newTestCartService(newMemBlobStore(), pub)

	view, err := svc.AddItem(context.Background(), "s-1", shirtInput("M", 1))

	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
	pub.AssertExpectations(t)
}

func TestCartService_Checkout(t *testing.T) {
	pub := permissivePublisher()
	svc := newTestCartService(newMemBlobStore(), pub)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, "s-1", func([]domain.CartLine, int64) error {
		t.Fatal("submit must not run for an empty cart")
		return nil
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.AddItem(ctx, "s-1", shirtInput("M", 2))
	require.NoError(t, err)

	view, err := svc.Checkout(ctx, "s-1", func(lines []domain.CartLine, subtotal int64) error {
		assert.Len(t, lines, 1)
		assert.Equal(t, int64(100), subtotal)
		return apperrors.PaymentFailed("declined")
	})
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Nil(t, view)

	lines, err := svc.Lines(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, lines, 1, "failed submit keeps the cart")

	view, err = svc.Checkout(ctx, "s-1", func([]domain.CartLine, int64) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	pub.AssertCalled(t, "PublishCartCleared", mock.Anything, "s-1")
}
