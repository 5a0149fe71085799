package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/orderdirect/internal/logging"
)

const NotifyChannel = "order_status"

// PGWatcher shares order updates between server instances over postgres
// LISTEN/NOTIFY. Local watchers hang off an embedded Hub.
type PGWatcher struct {
	hub      *Hub
	repo     *GormRepo
	listener *pq.Listener
}

func NewPGWatcher(dsn string, db *gorm.DB) (*PGWatcher, error) {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, err
	}
	return &PGWatcher{hub: NewHub(), repo: &GormRepo{DB: db}, listener: listener}, nil
}

func (w *PGWatcher) Watch(ctx context.Context, orderID uuid.UUID) (<-chan Order, error) {
	return w.hub.Watch(ctx, orderID)
}

// Notify publishes the order id; every instance reloads the order on receipt.
func (w *PGWatcher) Notify(ctx context.Context, o Order) error {
	return w.repo.DB.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", NotifyChannel, o.ID.String()).Error
}

// Run dispatches notifications until ctx is done.
func (w *PGWatcher) Run(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "order.pgwatcher")
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-w.listener.Notify:
			w.handle(ctx, n)
		case <-ping.C:
			if err := w.listener.Ping(); err != nil {
				l.Warn("listener_ping_failed", "error", err)
			}
		}
	}
}

func (w *PGWatcher) handle(ctx context.Context, n *pq.Notification) {
	// nil after a reconnect; updates sent while disconnected are lost.
	if n == nil || n.Channel != NotifyChannel {
		return
	}
	l := logging.FromContext(ctx).With("svc", "order.pgwatcher")

	id, err := uuid.Parse(n.Extra)
	if err != nil {
		l.Warn("bad_notification", "payload", n.Extra, "error", err)
		return
	}
	if w.hub.watchers(id) == 0 {
		return
	}

	o, err := w.repo.Get(ctx, id)
	if err != nil {
		l.Warn("notification_reload_failed", "order_id", id.String(), "error", err)
		return
	}
	_ = w.hub.Notify(ctx, *o)
}

func (w *PGWatcher) Close() error {
	return w.listener.Close()
}
