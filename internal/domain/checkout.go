package domain

import "time"

// Default shipping terms in minor units.
const (
	DefaultFreeShippingThreshold int64 = 5000
	DefaultFlatShippingFee       int64 = 300
)

// ShippingPolicy decides the shipping charge from the cart subtotal.
type ShippingPolicy struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// DefaultShippingPolicy returns the storefront's standard shipping terms.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
	}
}

// Quote is the price breakdown shown at checkout.
type Quote struct {
	Subtotal     int64 `json:"subtotal"`
	ShippingCost int64 `json:"shipping_cost"`
	GrandTotal   int64 `json:"grand_total"`
	FreeShipping bool  `json:"free_shipping"`
}

// Quote prices a subtotal. Shipping is free only when the subtotal is
// strictly above the threshold.
func (p ShippingPolicy) Quote(subtotal int64) Quote {
	shipping := p.FlatShippingFee
	if subtotal > p.FreeShippingThreshold {
		shipping = 0
	}
	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		GrandTotal:   subtotal + shipping,
		FreeShipping: shipping == 0,
	}
}

// QuoteCart prices the cart's current contents.
func (p ShippingPolicy) QuoteCart(c *Cart) Quote {
	return p.Quote(c.Total())
}

// PaymentMethod is how the shopper pays for an order.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCOD
}

// Order status constants.
const (
	OrderStatusPlaced = "placed"
)

// Contact identifies the person placing an order.
type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Address is a shipping destination.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Order is a placed checkout. Lines are a copy of the cart at submission.
type Order struct {
	ID            string        `json:"id"`
	ShopperID     string        `json:"shopper_id"`
	Status        string        `json:"status"`
	Lines         []CartLine    `json:"lines"`
	Subtotal      int64         `json:"subtotal"`
	ShippingCost  int64         `json:"shipping_cost"`
	GrandTotal    int64         `json:"grand_total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TransactionID string        `json:"transaction_id"`
	Contact       Contact       `json:"contact"`
	Shipping      Address       `json:"shipping_address"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ItemCount returns the total number of units in the order.
func (o *Order) ItemCount() int {
	var n int
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
