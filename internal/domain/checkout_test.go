package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingPolicy_Quote(t *testing.T) {
	p := DefaultShippingPolicy()

	tests := []struct {
		subtotal int64
		shipping int64
		grand    int64
	}{
		{0, 300, 300},
		{4999, 300, 5299},
		{5000, 300, 5300},
		{5001, 0, 5001},
		{12000, 0, 12000},
	}

	for _, tt := range tests {
		q := p.Quote(tt.subtotal)
		assert.Equal(t, tt.subtotal, q.Subtotal)
		assert.Equal(t, tt.shipping, q.ShippingCost, "subtotal %d", tt.subtotal)
		assert.Equal(t, tt.grand, q.GrandTotal, "subtotal %d", tt.subtotal)
		assert.Equal(t, tt.shipping == 0, q.FreeShipping)
	}
}

func TestShippingPolicy_Custom(t *testing.T) {
	p := ShippingPolicy{FreeShippingThreshold: 100, FlatShippingFee: 25}

	assert.Equal(t, int64(125), p.Quote(100).GrandTotal)
	assert.Equal(t, int64(101), p.Quote(101).GrandTotal)
}

func TestShippingPolicy_QuoteCart(t *testing.T) {
	c := NewCart()
	_, _ = c.AddItem(LineCandidate{ProductID: "coat", Size: "M", Color: "Black", Price: 2600, Quantity: 2})

	q := DefaultShippingPolicy().QuoteCart(c)
	assert.Equal(t, int64(5200), q.Subtotal)
	assert.Zero(t, q.ShippingCost)
	assert.Equal(t, int64(5200), q.GrandTotal)
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentCard.Valid())
	assert.True(t, PaymentCOD.Valid())
	assert.False(t, PaymentMethod("paypal").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
