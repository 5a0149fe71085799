package cart

import (
	"context"

	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
)

// Session is one client's cart: it is rehydrated on open and written back after
// every mutation. Failed writes are logged and dropped; the next mutation
// rewrites the whole snapshot.
type Session struct {
	key     string
	cart    Cart
	adapter *Adapter
	calc    pricing.Calculator
}

func OpenSession(ctx context.Context, adapter *Adapter, sessionID string, calc pricing.Calculator) *Session {
	key := Key(sessionID)
	return &Session{
		key:     key,
		cart:    adapter.Read(ctx, key),
		adapter: adapter,
		calc:    calc,
	}
}

func (s *Session) Key() string { return s.key }

func (s *Session) Cart() Cart { return s.cart }

func (s *Session) Totals() pricing.Totals {
	return s.cart.Totals(s.calc)
}

func (s *Session) AddItem(ctx context.Context, item MenuItem, tenantID, tenantName string) Cart {
	return s.apply(ctx, "add_item", func(c Cart) Cart { return c.AddItem(item, tenantID, tenantName) })
}

func (s *Session) RemoveItem(ctx context.Context, menuItemID string) Cart {
	return s.apply(ctx, "remove_item", func(c Cart) Cart { return c.RemoveItem(menuItemID) })
}

func (s *Session) SetQuantity(ctx context.Context, menuItemID string, quantity int) Cart {
	return s.apply(ctx, "set_quantity", func(c Cart) Cart { return c.SetQuantity(menuItemID, quantity) })
}

func (s *Session) SetInstructions(ctx context.Context, menuItemID, text string) Cart {
	return s.apply(ctx, "set_instructions", func(c Cart) Cart { return c.SetInstructions(menuItemID, text) })
}

func (s *Session) SetAddOns(ctx context.Context, menuItemID string, addOns []AddOn) Cart {
	return s.apply(ctx, "set_add_ons", func(c Cart) Cart { return c.SetAddOns(menuItemID, addOns) })
}

func (s *Session) Clear(ctx context.Context) Cart {
	return s.apply(ctx, "clear", func(c Cart) Cart { return c.Clear() })
}

func (s *Session) apply(ctx context.Context, op string, fn func(Cart) Cart) Cart {
	s.cart = fn(s.cart)
	if err := s.adapter.Write(ctx, s.key, s.cart); err != nil {
		logging.FromContext(ctx).With("svc", "cart.session").
			Warn("cart_write_dropped", "op", op, "key", s.key, "error", err)
	}
	return s.cart
}
