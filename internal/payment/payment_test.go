package payment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func TestNewRequest(t *testing.T) {
	lines := []domain.CartLine{
		{ID: "line-1", ProductID: "p1", Name: "Shirt", Price: 2000, Quantity: 2, Size: "M", Color: "White", Fabric: "Cotton"},
	}
	quote := domain.DefaultShippingPolicy().Quote(4000)

	req := NewRequest(lines, quote, domain.PaymentCOD,
		domain.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		domain.Address{Address: "1 Main St", City: "Izmir", Zip: "35000", Country: "TR"})

	assert.Equal(t, int64(4300), req.Amount)
	assert.Equal(t, int64(4000), req.Subtotal)
	assert.Equal(t, int64(300), req.ShippingCost)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "p1", req.Items[0].ProductID)
	assert.Equal(t, "Izmir", req.City)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paymentMethod":"cod"`)
	assert.Contains(t, string(data), `"amount":4300`)
}
