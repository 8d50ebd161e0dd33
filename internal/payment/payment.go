package payment

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Item is one order line as sent to the payment collaborator.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Fabric    string `json:"fabric"`
}

// Request is the checkout submission. Field names follow the storefront
// client's payment endpoint contract.
type Request struct {
	// OrderID is assigned before submission and doubles as the idempotency
	// key for retried calls.
	OrderID       string               `json:"orderId,omitempty"`
	Amount        int64                `json:"amount"`
	Subtotal      int64                `json:"subtotal"`
	ShippingCost  int64                `json:"shippingCost"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Items         []Item               `json:"items"`
	FirstName     string               `json:"firstName"`
	LastName      string               `json:"lastName"`
	Email         string               `json:"email"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	Zip           string               `json:"zip"`
	Country       string               `json:"country"`
}

// Result is the collaborator's answer.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Gateway submits checkouts for payment.
type Gateway interface {
	// Name returns the gateway name (e.g., "simulator", "remote").
	Name() string

	// Submit charges the request. A declined payment is a Result with
	// Success false, not an error.
	Submit(ctx context.Context, req *Request) (*Result, error)
}

// NewRequest builds a submission from the cart lines, the price quote and
// the shopper's checkout form.
func NewRequest(lines []domain.CartLine, quote domain.Quote, method domain.PaymentMethod, contact domain.Contact, addr domain.Address) *Request {
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Fabric:    l.Fabric,
		}
	}
	return &Request{
		Amount:        quote.GrandTotal,
		Subtotal:      quote.Subtotal,
		ShippingCost:  quote.ShippingCost,
		PaymentMethod: method,
		Items:         items,
		FirstName:     contact.FirstName,
		LastName:      contact.LastName,
		Email:         contact.Email,
		Address:       addr.Address,
		City:          addr.City,
		Zip:           addr.Zip,
		Country:       addr.Country,
	}
}
