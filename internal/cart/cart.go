package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	ErrEmptyCart       = errors.New("cart: cart is empty")
)

// Candidate is a menu item as offered by the catalog. Name and price are
// captured into the line item at add time and never re-fetched.
type Candidate struct {
	ItemID       uint   `json:"id"`
	RestaurantID uint   `json:"restaurantId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"price"`
}

// LineItem is one cart row. UnitPrice is kept in raw catalog units, see
// Pricing.DisplayPrice for the conversion applied on every total.
type LineItem struct {
	ItemID       uint   `json:"id"`
	RestaurantID uint   `json:"restaurantId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"price"`
	Quantity     uint   `json:"quantity"`
}

// Aggregate holds the line items of a single user session. At most one
// restaurant at a time: restaurantID is zero exactly when items is empty.
type Aggregate struct {
	items        []LineItem
	restaurantID uint
	pricing      Pricing
}

func New(p Pricing) *Aggregate {
	return &Aggregate{pricing: p}
}

// Items returns a copy of the line items in insertion order.
func (a *Aggregate) Items() []LineItem {
	out := make([]LineItem, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Aggregate) Len() int { return len(a.items) }

// RestaurantID reports the owning restaurant, ok is false for an empty cart.
func (a *Aggregate) RestaurantID() (uint, bool) {
	return a.restaurantID, a.restaurantID != 0
}

func (a *Aggregate) Pricing() Pricing { return a.pricing }

// AddItem merges the candidate into the cart. Adding from a different
// restaurant discards the current cart and starts a new single-item one:
// mixing delivery sources is disallowed. Adding an item already present
// increments its quantity, the unit price from the first add wins.
func (a *Aggregate) AddItem(cand Candidate, quantity uint) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if a.restaurantID != 0 && a.restaurantID != cand.RestaurantID {
		a.items = a.items[:0]
	}
	a.restaurantID = cand.RestaurantID

	for i := range a.items {
		if a.items[i].ItemID == cand.ItemID {
			a.items[i].Quantity += quantity
			return nil
		}
	}

	a.items = append(a.items, LineItem{
		ItemID:       cand.ItemID,
		RestaurantID: cand.RestaurantID,
		Name:         cand.Name,
		UnitPrice:    cand.UnitPrice,
		Quantity:     quantity,
	})
	return nil
}

// DecrementItem lowers the quantity of the matching item by one, removing
// it entirely when it reaches zero. Unknown ids are a no-op.
func (a *Aggregate) DecrementItem(itemID uint) {
	for i := range a.items {
		if a.items[i].ItemID != itemID {
			continue
		}
		if a.items[i].Quantity > 1 {
			a.items[i].Quantity--
		} else {
			a.items = append(a.items[:i], a.items[i+1:]...)
			if len(a.items) == 0 {
				a.restaurantID = 0
			}
		}
		return
	}
}

// RemoveItem deletes the matching item regardless of quantity. Unknown ids
// are a no-op.
func (a *Aggregate) RemoveItem(itemID uint) {
	for i := range a.items {
		if a.items[i].ItemID != itemID {
			continue
		}
		a.items = append(a.items[:i], a.items[i+1:]...)
		if len(a.items) == 0 {
			a.restaurantID = 0
		}
		return
	}
}

// SetQuantity overwrites the quantity of the matching item. Zero is not a
// valid target, removal must go through RemoveItem so that a zero quantity
// is never stored. Unknown ids are a no-op.
func (a *Aggregate) SetQuantity(itemID uint, quantity uint) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range a.items {
		if a.items[i].ItemID == itemID {
			a.items[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// Clear empties the cart. Idempotent.
func (a *Aggregate) Clear() {
	a.items = nil
	a.restaurantID = 0
}

// Total is the sum of display-priced line totals.
func (a *Aggregate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range a.items {
		total = total.Add(a.pricing.LineTotal(it))
	}
	return total
}
