package cart

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/orderdirect/internal/logging"
)

const KeyPrefix = "orderdirect_cart"

// Store is a durable key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func Key(sessionID string) string {
	return KeyPrefix + ":" + sessionID
}

type Adapter struct {
	Store Store
}

func NewAdapter(s Store) *Adapter {
	return &Adapter{Store: s}
}

// Read never fails: a missing, unreadable or unparsable snapshot yields the
// empty cart.
func (a *Adapter) Read(ctx context.Context, key string) Cart {
	l := logging.FromContext(ctx).With("svc", "cart.read", "key", key)

	if a == nil || a.Store == nil {
		return Empty()
	}

	data, ok, err := a.Store.Get(ctx, key)
	if err != nil {
		l.Warn("cart_read_failed", "reason", "store unavailable", "error", err)
		return Empty()
	}
	if !ok || len(data) == 0 {
		return Empty()
	}

	c, err := Unmarshal(data)
	if err != nil {
		l.Warn("cart_read_failed", "reason", "snapshot not parsable", "error", err)
		return Empty()
	}
	return c
}

// Write replaces the stored snapshot with the full cart.
func (a *Adapter) Write(ctx context.Context, key string, c Cart) error {
	if a == nil || a.Store == nil {
		return nil
	}
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := a.Store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
