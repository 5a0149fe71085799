package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/orderdirect/internal/cart"
	"github.com/Skotchmaster/orderdirect/internal/db/dbtest"
	"github.com/Skotchmaster/orderdirect/internal/events"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
)

type testEnv struct {
	svc *Service
	hub *Hub
	rec *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hub := NewHub()
	rec := &events.Recorder{}
	svc := NewService(dbtest.Open(t, Models()...), rec, hub, pricing.Default)
	return &testEnv{svc: svc, hub: hub, rec: rec}
}

var customer = Customer{Name: "Cara Customer", Email: "cara@example.com", Phone: "555-0101"}

func boundCart(tenantID uuid.UUID) cart.Cart {
	pizza := cart.MenuItem{ID: "p1", Name: "Margherita", Price: 9.99, Available: true}
	cola := cart.MenuItem{ID: "d1", Name: "Cola", Price: 2, Available: true}
	return cart.Empty().
		AddItem(pizza, tenantID.String(), "Acme").
		AddItem(pizza, tenantID.String(), "Acme").
		AddItem(cola, tenantID.String(), "Acme").
		SetInstructions("p1", "extra basil").
		SetAddOns("d1", []cart.AddOn{{Name: "Ice", Price: 0.5}})
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusOpen, StatusClosed))
	assert.NoError(t, CheckTransition(StatusOpen, StatusOpen))
	assert.NoError(t, CheckTransition(StatusClosed, StatusClosed))
	assert.ErrorIs(t, CheckTransition(StatusClosed, StatusOpen), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(StatusOpen, "cooking"), ErrValidation)
}

func TestCheckout_StoresCartTotalVerbatim(t *testing.T) {
	env := newTestEnv(t)
	tenantID := uuid.New()
	c := boundCart(tenantID)

	o, err := env.svc.Checkout(context.Background(), c, customer)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, tenantID, o.TenantID)
	assert.Equal(t, c.Totals(pricing.Default).Total, o.Total)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Margherita", o.Items[0].Name)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "extra basil", o.Items[0].SpecialInstructions)
	assert.Equal(t, 2.5, o.Items[1].Price)

	got, err := env.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Total, got.Total)
	assert.Len(t, got.Items, 2)

	assert.Equal(t, []string{"order_created"}, env.rec.Types(events.TopicOrders))
}

func TestCheckout_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Checkout(ctx, cart.Empty(), customer)
	assert.ErrorIs(t, err, ErrValidation)

	for _, cust := range []Customer{
		{Email: "a@b.co", Phone: "1"},
		{Name: "A", Email: "nope", Phone: "1"},
		{Name: "A", Email: "a@b.co"},
	} {
		_, err := env.svc.Checkout(ctx, boundCart(uuid.New()), cust)
		assert.ErrorIs(t, err, ErrValidation)
	}

	notUUID := cart.Empty().AddItem(cart.MenuItem{ID: "x", Price: 1}, "acme", "Acme")
	_, err = env.svc.Checkout(ctx, notUUID, customer)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetForTenant_HidesOtherTenants(t *testing.T) {
	env := newTestEnv(t)
	o, err := env.svc.Checkout(context.Background(), boundCart(uuid.New()), customer)
	require.NoError(t, err)

	_, err = env.svc.GetForTenant(context.Background(), uuid.New(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByTenant_NewestFirstPaginated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		o, err := env.svc.Checkout(ctx, boundCart(tenantID), customer)
		require.NoError(t, err)
		ids = append(ids, o.ID)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := env.svc.Checkout(ctx, boundCart(uuid.New()), customer)
	require.NoError(t, err)

	total, page, err := env.svc.ListByTenant(ctx, tenantID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	_, rest, err := env.svc.ListByTenant(ctx, tenantID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}

func TestClose_IsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := uuid.New()
	o, err := env.svc.Checkout(ctx, boundCart(tenantID), customer)
	require.NoError(t, err)

	closed, err := env.svc.Close(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)

	again, err := env.svc.Close(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, again.Status)

	_, err = env.svc.SetStatus(ctx, tenantID, o.ID, StatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.Close(ctx, uuid.New(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"order_created", "order_closed"}, env.rec.Types(events.TopicOrders))
}

func TestClose_NotifiesWatchers(t *testing.T) {
	env := newTestEnv(t)
	tenantID := uuid.New()
	o, err := env.svc.Checkout(context.Background(), boundCart(tenantID), customer)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := env.hub.Watch(ctx, o.ID)
	require.NoError(t, err)

	_, err = env.svc.Close(context.Background(), tenantID, o.ID)
	require.NoError(t, err)

	select {
	case got := <-updates:
		assert.Equal(t, StatusClosed, got.Status)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}

	cancel()
	assert.Eventually(t, func() bool { return env.hub.watchers(o.ID) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-updates
	assert.False(t, open)
}

func TestHub_NotifyOnlyMatchingOrder(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := uuid.New(), uuid.New()
	chA, err := hub.Watch(ctx, a)
	require.NoError(t, err)

	require.NoError(t, hub.Notify(ctx, Order{ID: b}))
	require.NoError(t, hub.Notify(ctx, Order{ID: a, Status: StatusClosed}))

	got := <-chA
	assert.Equal(t, a, got.ID)
	assert.Empty(t, chA)
}

func TestPGWatcher_HandleReloadsAndFansOut(t *testing.T) {
	env := newTestEnv(t)
	tenantID := uuid.New()
	o, err := env.svc.Checkout(context.Background(), boundCart(tenantID), customer)
	require.NoError(t, err)

	w := &PGWatcher{hub: NewHub(), repo: env.svc.Repo}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := w.Watch(ctx, o.ID)
	require.NoError(t, err)

	w.handle(ctx, nil)
	w.handle(ctx, &pq.Notification{Channel: "other", Extra: o.ID.String()})
	w.handle(ctx, &pq.Notification{Channel: NotifyChannel, Extra: "garbage"})
	assert.Empty(t, updates)

	w.handle(ctx, &pq.Notification{Channel: NotifyChannel, Extra: o.ID.String()})
	select {
	case got := <-updates:
		assert.Equal(t, o.ID, got.ID)
		assert.Len(t, got.Items, 2)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}
