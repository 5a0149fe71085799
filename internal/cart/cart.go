// Package cart holds the shopping cart state machine. A Cart is either empty
// (no restaurant bound, no items) or bound to exactly one restaurant with at
// least one line item; every operation returns a new Cart in one of those two
// states.
package cart

import "github.com/Skotchmaster/orderdirect/internal/pricing"

// MenuItem is the menu item data captured when it was added to the cart.
// Prices are never re-fetched.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available"`
}

type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type LineItem struct {
	MenuItem            MenuItem `json:"menuItem"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
	AddOns              []AddOn  `json:"selectedAddOns,omitempty"`
}

// MaxQuantity bounds a single line. Increments past it saturate.
const MaxQuantity = 999

type binding struct {
	tenantID   string
	tenantName string
	items      []LineItem
}

type Cart struct {
	b *binding
}

func Empty() Cart {
	return Cart{}
}

func (c Cart) Bound() bool {
	return c.b != nil
}

func (c Cart) TenantID() string {
	if c.b == nil {
		return ""
	}
	return c.b.tenantID
}

func (c Cart) TenantName() string {
	if c.b == nil {
		return ""
	}
	return c.b.tenantName
}

// Items returns a copy of the line items in insertion order.
func (c Cart) Items() []LineItem {
	if c.b == nil {
		return []LineItem{}
	}
	return cloneItems(c.b.items)
}

func (c Cart) Item(menuItemID string) (LineItem, bool) {
	if i := c.indexOf(menuItemID); i >= 0 {
		return cloneItem(c.b.items[i]), true
	}
	return LineItem{}, false
}

// AddItem adds one unit of item. Adding from a restaurant other than the bound
// one drops every existing line and rebinds the cart.
func (c Cart) AddItem(item MenuItem, tenantID, tenantName string) Cart {
	if tenantID == "" || item.ID == "" {
		return c
	}

	if c.b == nil || c.b.tenantID != tenantID {
		return bound(tenantID, tenantName, []LineItem{{MenuItem: item, Quantity: 1}})
	}

	items := cloneItems(c.b.items)
	if i := c.indexOf(item.ID); i >= 0 {
		items[i].Quantity = clampQuantity(items[i].Quantity + 1)
		return bound(tenantID, tenantName, items)
	}
	return bound(tenantID, tenantName, append(items, LineItem{MenuItem: item, Quantity: 1}))
}

func (c Cart) RemoveItem(menuItemID string) Cart {
	i := c.indexOf(menuItemID)
	if i < 0 {
		return c
	}

	items := make([]LineItem, 0, len(c.b.items)-1)
	for j, it := range c.b.items {
		if j != i {
			items = append(items, cloneItem(it))
		}
	}
	return bound(c.b.tenantID, c.b.tenantName, items)
}

// SetQuantity removes the line when quantity <= 0 and caps it at MaxQuantity.
func (c Cart) SetQuantity(menuItemID string, quantity int) Cart {
	if quantity <= 0 {
		return c.RemoveItem(menuItemID)
	}
	return c.update(menuItemID, func(it *LineItem) { it.Quantity = clampQuantity(quantity) })
}

func (c Cart) SetInstructions(menuItemID, text string) Cart {
	return c.update(menuItemID, func(it *LineItem) { it.SpecialInstructions = text })
}

func (c Cart) SetAddOns(menuItemID string, addOns []AddOn) Cart {
	return c.update(menuItemID, func(it *LineItem) {
		it.AddOns = append([]AddOn(nil), addOns...)
		if len(it.AddOns) == 0 {
			it.AddOns = nil
		}
	})
}

func (c Cart) Clear() Cart {
	return Empty()
}

// Load replaces the cart with a previously persisted snapshot.
func (c Cart) Load(s Snapshot) Cart {
	return FromSnapshot(s)
}

func (c Cart) Lines() []pricing.Line {
	if c.b == nil {
		return nil
	}
	lines := make([]pricing.Line, 0, len(c.b.items))
	for _, it := range c.b.items {
		var addOns []float64
		for _, a := range it.AddOns {
			addOns = append(addOns, a.Price)
		}
		lines = append(lines, pricing.Line{UnitPrice: it.MenuItem.Price, AddOns: addOns, Quantity: it.Quantity})
	}
	return lines
}

func (c Cart) Totals(calc pricing.Calculator) pricing.Totals {
	return calc.Calculate(c.Lines())
}

func (c Cart) ItemCount() int {
	return pricing.ItemCount(c.Lines())
}

func (c Cart) indexOf(menuItemID string) int {
	if c.b == nil {
		return -1
	}
	for i, it := range c.b.items {
		if it.MenuItem.ID == menuItemID {
			return i
		}
	}
	return -1
}

func (c Cart) update(menuItemID string, fn func(*LineItem)) Cart {
	i := c.indexOf(menuItemID)
	if i < 0 {
		return c
	}
	items := cloneItems(c.b.items)
	fn(&items[i])
	return bound(c.b.tenantID, c.b.tenantName, items)
}

// bound is the only constructor of a non-empty cart.
func bound(tenantID, tenantName string, items []LineItem) Cart {
	if tenantID == "" || len(items) == 0 {
		return Empty()
	}
	return Cart{b: &binding{tenantID: tenantID, tenantName: tenantName, items: items}}
}

func clampQuantity(q int) int {
	if q > MaxQuantity || q < 0 {
		return MaxQuantity
	}
	return q
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it LineItem) LineItem {
	if it.AddOns != nil {
		it.AddOns = append([]AddOn(nil), it.AddOns...)
	}
	return it
}
