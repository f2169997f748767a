package cart

import "encoding/json"

// Snapshot is the persisted cart representation, the same shape the web
// client keeps under its "cart" storage key. Total is advisory: Restore
// ignores it and recomputes from the item list.
type Snapshot struct {
	Items        []LineItem `json:"items"`
	RestaurantID *uint      `json:"restaurantId"`
	Total        float64    `json:"total,omitempty"`
}

func (a *Aggregate) Snapshot() Snapshot {
	s := Snapshot{Items: a.Items()}
	if a.restaurantID != 0 {
		id := a.restaurantID
		s.RestaurantID = &id
	}
	s.Total, _ = a.Total().Float64()
	return s
}

// Restore rebuilds the aggregate from a snapshot, normalizing anything
// that would violate its invariants: zero-quantity rows and rows from a
// second restaurant are dropped (first item wins), duplicate ids are
// merged with the quantities summed and the first row's price kept.
func Restore(s Snapshot, p Pricing) *Aggregate {
	a := New(p)
	for _, it := range s.Items {
		if it.Quantity < 1 {
			continue
		}
		if a.restaurantID != 0 && a.restaurantID != it.RestaurantID {
			continue
		}
		a.restaurantID = it.RestaurantID

		merged := false
		for i := range a.items {
			if a.items[i].ItemID == it.ItemID {
				a.items[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			a.items = append(a.items, it)
		}
	}
	return a
}

func (a *Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Snapshot())
}
