package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DefaultFabric is stored on lines added without a fabric choice.
const DefaultFabric = "Standard"

// Upper bounds on cart arithmetic. A line subtotal is at most
// MaxLineQuantity*MaxPrice and the cart total at most MaxCartTotal, both well
// inside int64.
const (
	MaxLineQuantity       = 1_000_000
	MaxPrice        int64 = 1_000_000_000_000
	MaxCartTotal    int64 = 1_000_000_000_000_000
)

// linePrefix prefixes the sequence number in generated line IDs.
const linePrefix = "line-"

// CartLine is one entry in a shopper's cart. ID identifies the line, not the
// product: the same product in two sizes occupies two lines.
type CartLine struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Fabric    string `json:"fabric"`
}

// Subtotal returns price times quantity in minor units.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// LineCandidate holds the values for a line that does not have an ID yet.
// Name, Price and Image are snapshots taken from the catalog at add time.
type LineCandidate struct {
	ProductID string
	Name      string
	Price     int64
	Quantity  int
	Image     string
	Size      string
	Color     string
	Fabric    string
}

// Validate reports the first missing or out-of-range field.
func (c LineCandidate) Validate() error {
	switch {
	case strings.TrimSpace(c.ProductID) == "":
		return apperrors.InvalidInput("product id is required")
	case strings.TrimSpace(c.Size) == "":
		return apperrors.InvalidInput("size is required")
	case strings.TrimSpace(c.Color) == "":
		return apperrors.InvalidInput("color is required")
	case c.Quantity < 1:
		return apperrors.InvalidInput("quantity must be at least 1")
	case c.Quantity > MaxLineQuantity:
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	case c.Price < 0:
		return apperrors.InvalidInput("price must not be negative")
	case c.Price > MaxPrice:
		return apperrors.InvalidInput(fmt.Sprintf("price must not exceed %d", MaxPrice))
	}
	return nil
}

func (c LineCandidate) fabric() string {
	if strings.TrimSpace(c.Fabric) == "" {
		return DefaultFabric
	}
	return c.Fabric
}

// Cart is a shopper's cart. It is a plain value with no locking or I/O; the
// JSON form is the persisted blob.
type Cart struct {
	Items   []CartLine `json:"items"`
	IsOpen  bool       `json:"is_open"`
	NextSeq int64      `json:"next_seq"`
}

// NewCart returns an empty, closed cart.
func NewCart() *Cart {
	return &Cart{Items: []CartLine{}}
}

// AddItem merges c into the line with the same product, size, color and
// fabric, or appends a new line. The cart is opened either way. The
// resulting line is returned.
func (c *Cart) AddItem(cand LineCandidate) (CartLine, error) {
	if err := cand.Validate(); err != nil {
		return CartLine{}, err
	}
	fabric := cand.fabric()

	for i := range c.Items {
		l := &c.Items[i]
		if l.ProductID == cand.ProductID && l.Size == cand.Size && l.Color == cand.Color && l.Fabric == fabric {
			quantity := l.Quantity + cand.Quantity
			if err := c.checkLine(i, l.Price, quantity); err != nil {
				return CartLine{}, err
			}
			c.IsOpen = true
			l.Quantity = quantity
			return *l, nil
		}
	}
	if err := c.checkLine(-1, cand.Price, cand.Quantity); err != nil {
		return CartLine{}, err
	}

	c.IsOpen = true

	line := CartLine{
		ID:        c.nextLineID(),
		ProductID: cand.ProductID,
		Name:      cand.Name,
		Price:     cand.Price,
		Quantity:  cand.Quantity,
		Image:     cand.Image,
		Size:      cand.Size,
		Color:     cand.Color,
		Fabric:    fabric,
	}
	c.Items = append(c.Items, line)
	return line, nil
}

// checkLine reports whether a line at index skip (or a new line when skip is
// -1) can hold quantity at price without breaching the arithmetic bounds.
func (c *Cart) checkLine(skip int, price int64, quantity int) error {
	if quantity > MaxLineQuantity {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}
	var rest int64
	for i, l := range c.Items {
		if i != skip {
			rest += l.Subtotal()
		}
	}
	if price*int64(quantity) > MaxCartTotal-rest {
		return apperrors.InvalidInput(fmt.Sprintf("cart total must not exceed %d", MaxCartTotal))
	}
	return nil
}

// nextLineID advances the sequence past any ID already in the cart, so blobs
// written before the sequence was persisted cannot produce duplicates.
func (c *Cart) nextLineID() string {
	for _, l := range c.Items {
		if n, ok := lineSeq(l.ID); ok && n > c.NextSeq {
			c.NextSeq = n
		}
	}
	c.NextSeq++
	return linePrefix + strconv.FormatInt(c.NextSeq, 10)
}

func lineSeq(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, linePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	return n, err == nil
}

// RemoveItem deletes the line with the given ID. It reports whether a line
// was removed; unknown IDs are a no-op.
func (c *Cart) RemoveItem(lineID string) bool {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the line's quantity to max(1, quantity). It reports
// whether the line exists; quantities past the cart bounds are rejected and
// leave the line unchanged.
func (c *Cart) UpdateQuantity(lineID string, quantity int) (bool, error) {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			quantity = max(1, quantity)
			if err := c.checkLine(i, c.Items[i].Price, quantity); err != nil {
				return false, err
			}
			c.Items[i].Quantity = quantity
			return true, nil
		}
	}
	return false, nil
}

// Clear removes every line. Visibility and the ID sequence are kept.
func (c *Cart) Clear() {
	c.Items = []CartLine{}
}

// ToggleVisibility flips the open flag and returns the new value.
func (c *Cart) ToggleVisibility() bool {
	c.IsOpen = !c.IsOpen
	return c.IsOpen
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Items {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.Items))
	copy(out, c.Items)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
