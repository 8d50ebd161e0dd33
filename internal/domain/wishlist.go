package domain

import "github.com/utafrali/storefront/pkg/slug"

// WishlistEntry is a saved product. ProductID is the identity.
type WishlistEntry struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Slug      string `json:"slug"`
	Category  string `json:"category"`
}

// Wishlist is a shopper's set of saved products in insertion order.
type Wishlist struct {
	Items []WishlistEntry `json:"items"`
}

// NewWishlist returns an empty wishlist.
func NewWishlist() *Wishlist {
	return &Wishlist{Items: []WishlistEntry{}}
}

// AddItem appends e unless its product is already saved. It reports whether
// the wishlist changed. A missing slug is derived from the name.
func (w *Wishlist) AddItem(e WishlistEntry) bool {
	if w.IsInWishlist(e.ProductID) {
		return false
	}
	if e.Slug == "" {
		e.Slug = slug.Generate(e.Name)
	}
	w.Items = append(w.Items, e)
	return true
}

// RemoveItem deletes the entry for productID, reporting whether it existed.
func (w *Wishlist) RemoveItem(productID string) bool {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return true
		}
	}
	return false
}

// IsInWishlist reports whether productID is saved.
func (w *Wishlist) IsInWishlist(productID string) bool {
	for _, e := range w.Items {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

// Toggle adds e when absent and removes it when present. It returns the
// resulting membership.
func (w *Wishlist) Toggle(e WishlistEntry) bool {
	if w.RemoveItem(e.ProductID) {
		return false
	}
	w.AddItem(e)
	return true
}

// Clear removes every entry.
func (w *Wishlist) Clear() {
	w.Items = []WishlistEntry{}
}

// Entries returns a copy of the entries in insertion order.
func (w *Wishlist) Entries() []WishlistEntry {
	out := make([]WishlistEntry, len(w.Items))
	copy(out, w.Items)
	return out
}
