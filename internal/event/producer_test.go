package event

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func newTestProducer() (*Producer, *recordingWriter) {
	w := &recordingWriter{}
	return NewProducer(pkgkafka.NewProducerWithWriter(w, nil, nil), nil), w
}

func decode(t *testing.T, msg kafka.Message, dst any) *pkgkafka.Event {
	t.Helper()
	evt, err := pkgkafka.UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	require.NoError(t, evt.UnmarshalData(dst))
	return evt
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.cart.cleared", TopicCartCleared)
	assert.Equal(t, "storefront.wishlist.updated", TopicWishlistUpdated)
	assert.Equal(t, "storefront.order.placed", TopicOrderPlaced)
}

func TestPublishCartUpdated(t *testing.T) {
	p, w := newTestProducer()
	cart := domain.NewCart()
	_, err := cart.AddItem(domain.LineCandidate{ProductID: "p1", Size: "M", Color: "Red", Price: 50, Quantity: 3})
	require.NoError(t, err)

	ctx := logger.WithCorrelationID(context.Background(), "corr-9")
	require.NoError(t, p.PublishCartUpdated(ctx, "shopper-1", cart))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TopicCartUpdated, msg.Topic)
	assert.Equal(t, "shopper-1", string(msg.Key))

	var data CartUpdatedData
	evt := decode(t, msg, &data)
	assert.Equal(t, "corr-9", evt.CorrelationID)
	assert.Equal(t, AggregateTypeCart, evt.AggregateType)
	assert.Equal(t, SourceStorefront, evt.Source)
	assert.Equal(t, int64(150), data.Total)
	assert.Equal(t, 3, data.ItemCount)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, "line-1", data.Lines[0].ID)
}

func TestPublishCartCleared(t *testing.T) {
	p, w := newTestProducer()

	require.NoError(t, p.PublishCartCleared(context.Background(), "shopper-2"))

	require.Len(t, w.msgs, 1)
	var data CartClearedData
	evt := decode(t, w.msgs[0], &data)
	assert.Equal(t, "shopper-2", data.ShopperID)
	assert.Empty(t, evt.CorrelationID)
}

func TestPublishWishlistUpdated(t *testing.T) {
	p, w := newTestProducer()
	wl := domain.NewWishlist()
	wl.AddItem(domain.WishlistEntry{ProductID: "a"})
	wl.AddItem(domain.WishlistEntry{ProductID: "b"})

	require.NoError(t, p.PublishWishlistUpdated(context.Background(), "shopper-3", wl))

	var data WishlistUpdatedData
	decode(t, w.msgs[0], &data)
	assert.Equal(t, []string{"a", "b"}, data.ProductIDs)
	assert.Equal(t, TopicWishlistUpdated, w.msgs[0].Topic)
}

func TestPublishOrderPlaced(t *testing.T) {
	p, w := newTestProducer()
	order := &domain.Order{
		ID:            "o-1",
		ShopperID:     "shopper-4",
		Lines:         []domain.CartLine{{Quantity: 2}, {Quantity: 1}},
		Subtotal:      6000,
		GrandTotal:    6000,
		PaymentMethod: domain.PaymentCard,
		TransactionID: "txn_123456789",
	}

	require.NoError(t, p.PublishOrderPlaced(context.Background(), order))

	msg := w.msgs[0]
	assert.Equal(t, "shopper-4", string(msg.Key))
	var data OrderPlacedData
	evt := decode(t, msg, &data)
	assert.Equal(t, "o-1", evt.Metadata["order_id"])
	assert.Equal(t, "o-1", data.OrderID)
	assert.Equal(t, 3, data.ItemCount)
	assert.Equal(t, "card", data.PaymentMethod)
}

func TestPublish_WriterError(t *testing.T) {
	p, w := newTestProducer()
	w.err = errors.New("leader not available")

	err := p.PublishCartCleared(context.Background(), "shopper-5")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish storefront.cart.cleared event")
	assert.Contains(t, err.Error(), "leader not available")
}
