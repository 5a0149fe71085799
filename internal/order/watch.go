package order

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Watcher streams updates of one order until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, orderID uuid.UUID) (<-chan Order, error)
}

type Notifier interface {
	Notify(ctx context.Context, o Order) error
}

// Hub fans order updates out to in-process watchers.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan Order]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan Order]struct{})}
}

func (h *Hub) Watch(ctx context.Context, orderID uuid.UUID) (<-chan Order, error) {
	ch := make(chan Order, 4)

	h.mu.Lock()
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[chan Order]struct{})
	}
	h.subs[orderID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[orderID], ch)
		if len(h.subs[orderID]) == 0 {
			delete(h.subs, orderID)
		}
		close(ch)
	}()
	return ch, nil
}

// Notify never blocks: a watcher whose buffer is full misses the update.
func (h *Hub) Notify(_ context.Context, o Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[o.ID] {
		select {
		case ch <- o:
		default:
		}
	}
	return nil
}

func (h *Hub) watchers(orderID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}
