package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/orderdirect/internal/kvstore"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	getErr error
	setErr error
	sets   int
	data   map[string][]byte
}

func (f *flakyStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *flakyStore) Set(_ context.Context, key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[key] = value
	return nil
}

func (f *flakyStore) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestKey(t *testing.T) {
	assert.Equal(t, "orderdirect_cart:abc", Key("abc"))
}

func TestSession_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	adapter := NewAdapter(store)

	s := OpenSession(ctx, adapter, "sess-1", pricing.Default)
	assert.False(t, s.Cart().Bound())

	s.AddItem(ctx, margherita, "acme", "Acme Pizza")
	s.AddItem(ctx, margherita, "acme", "Acme Pizza")
	s.SetInstructions(ctx, "p1", "cut in squares")

	reopened := OpenSession(ctx, adapter, "sess-1", pricing.Default)
	assert.Equal(t, s.Cart(), reopened.Cart())
	assert.Equal(t, 25.98, reopened.Totals().Total)

	reopened.Clear(ctx)
	again := OpenSession(ctx, adapter, "sess-1", pricing.Default)
	assert.False(t, again.Cart().Bound())

	raw, ok, err := store.Get(ctx, Key("sess-1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"restaurantId":null,"restaurantName":null,"items":[]}`, string(raw))
}

func TestSession_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(kvstore.NewMemory())

	OpenSession(ctx, adapter, "a", pricing.Default).AddItem(ctx, margherita, "acme", "Acme Pizza")

	b := OpenSession(ctx, adapter, "b", pricing.Default)
	assert.False(t, b.Cart().Bound())
}

func TestSession_ReadFailureYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{getErr: errors.New("storage unavailable")}

	s := OpenSession(ctx, NewAdapter(store), "x", pricing.Default)

	assert.False(t, s.Cart().Bound())
}

func TestSession_UnparsableSnapshotYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{data: map[string][]byte{Key("x"): []byte("]]garbage")}}

	s := OpenSession(ctx, NewAdapter(store), "x", pricing.Default)

	assert.False(t, s.Cart().Bound())
}

func TestSession_WriteFailureIsDroppedAndRetriedOnNextMutation(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{setErr: errors.New("quota exceeded")}
	adapter := NewAdapter(store)

	s := OpenSession(ctx, adapter, "x", pricing.Default)
	c := s.AddItem(ctx, margherita, "acme", "Acme Pizza")
	assert.True(t, c.Bound())
	assert.Equal(t, 1, store.sets)

	store.setErr = nil
	s.AddItem(ctx, calzone, "acme", "Acme Pizza")
	assert.Equal(t, 2, store.sets)

	reopened := OpenSession(ctx, adapter, "x", pricing.Default)
	assert.Len(t, reopened.Cart().Items(), 2)
}

func TestAdapter_NilStore(t *testing.T) {
	var a *Adapter
	assert.False(t, a.Read(context.Background(), "k").Bound())
	assert.NoError(t, a.Write(context.Background(), "k", Empty()))
}
