package cart

import "encoding/json"

// Snapshot is the persisted shape of a cart. Restaurant fields are null for an
// empty cart.
type Snapshot struct {
	RestaurantID   *string    `json:"restaurantId"`
	RestaurantName *string    `json:"restaurantName"`
	Items          []LineItem `json:"items"`
}

func (c Cart) Snapshot() Snapshot {
	if c.b == nil {
		return Snapshot{Items: []LineItem{}}
	}
	id, name := c.b.tenantID, c.b.tenantName
	return Snapshot{
		RestaurantID:   &id,
		RestaurantName: &name,
		Items:          cloneItems(c.b.items),
	}
}

// FromSnapshot rebuilds a cart from persisted data. Lines without a menu item id
// or with a quantity below one are dropped, quantities are capped at
// MaxQuantity, and a snapshot without a restaurant or
// without items becomes the empty cart.
func FromSnapshot(s Snapshot) Cart {
	if s.RestaurantID == nil || *s.RestaurantID == "" {
		return Empty()
	}

	items := make([]LineItem, 0, len(s.Items))
	seen := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		if it.MenuItem.ID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := seen[it.MenuItem.ID]; ok {
			items[i].Quantity = addQuantity(items[i].Quantity, it.Quantity)
			continue
		}
		seen[it.MenuItem.ID] = len(items)
		it = cloneItem(it)
		it.Quantity = clampQuantity(it.Quantity)
		items = append(items, it)
	}

	var name string
	if s.RestaurantName != nil {
		name = *s.RestaurantName
	}
	return bound(*s.RestaurantID, name, items)
}

func addQuantity(a, b int) int {
	if b > MaxQuantity-a {
		return MaxQuantity
	}
	return a + b
}

func Marshal(c Cart) ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

func Unmarshal(data []byte) (Cart, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Empty(), err
	}
	return FromSnapshot(s), nil
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = FromSnapshot(s)
	return nil
}
