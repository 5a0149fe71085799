package menu

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/orderdirect/internal/db/dbtest"
	"github.com/Skotchmaster/orderdirect/internal/events"
)

func newTestService(t *testing.T) (*Service, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return NewService(dbtest.Open(t, Models()...), rec), rec
}

func ptr[T any](v T) *T { return &v }

func mustItem(t *testing.T, s *Service, tenantID uuid.UUID, name, category string, price float64) *MenuItem {
	t.Helper()
	item, err := s.CreateItem(context.Background(), tenantID, ItemInput{Name: name, Category: category, Price: price})
	require.NoError(t, err)
	return item
}

func TestCreateItem_Validation(t *testing.T) {
	s, _ := newTestService(t)
	tenantID := uuid.New()

	for _, in := range []ItemInput{
		{Name: "Margherita", Price: 0},
		{Name: "Margherita", Price: -1},
		{Name: "  ", Price: 10},
	} {
		_, err := s.CreateItem(context.Background(), tenantID, in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestCreateItem_DefaultsToAvailable(t *testing.T) {
	s, _ := newTestService(t)
	tenantID := uuid.New()

	item := mustItem(t, s, tenantID, "Margherita", "Pizza", 9.99)
	assert.True(t, item.Available)

	hidden, err := s.CreateItem(context.Background(), tenantID, ItemInput{Name: "Secret", Price: 1, Available: ptr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.Available)
}

func TestListAvailable_ScopedAndFiltered(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	t1, t2 := uuid.New(), uuid.New()

	a := mustItem(t, s, t1, "Margherita", "Pizza", 9.99)
	b := mustItem(t, s, t1, "Cola", "Drinks", 2)
	mustItem(t, s, t2, "Other", "Pizza", 5)

	_, err := s.SetAvailability(ctx, t1, b.ID, false)
	require.NoError(t, err)

	avail, err := s.ListAvailable(ctx, t1)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, a.ID, avail[0].ID)

	all, err := s.ListItems(ctx, t1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetItem(ctx, t2, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem_Partial(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()
	item := mustItem(t, s, tenantID, "Margherita", "Pizza", 9.99)

	got, err := s.UpdateItem(ctx, tenantID, item.ID, ItemPatch{Price: ptr(11.5)})
	require.NoError(t, err)
	assert.Equal(t, 11.5, got.Price)
	assert.Equal(t, "Margherita", got.Name)

	_, err = s.UpdateItem(ctx, tenantID, item.ID, ItemPatch{Price: ptr(0.0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.UpdateItem(ctx, tenantID, uuid.New(), ItemPatch{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()
	item := mustItem(t, s, tenantID, "Margherita", "Pizza", 9.99)

	assert.ErrorIs(t, s.DeleteItem(ctx, uuid.New(), item.ID), ErrNotFound)
	require.NoError(t, s.DeleteItem(ctx, tenantID, item.ID))
	assert.ErrorIs(t, s.DeleteItem(ctx, tenantID, item.ID), ErrNotFound)
}

func TestCategories_SortedAndUniquePerTenant(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	t1, t2 := uuid.New(), uuid.New()

	_, err := s.CreateCategory(ctx, t1, CategoryInput{Name: "Drinks", DisplayOrder: 2})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, t1, CategoryInput{Name: "Pizza", DisplayOrder: 1})
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, t1, CategoryInput{Name: "Pizza"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.CreateCategory(ctx, t2, CategoryInput{Name: "Pizza"})
	assert.NoError(t, err)
	_, err = s.CreateCategory(ctx, t1, CategoryInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	cats, err := s.ListCategories(ctx, t1)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Pizza", cats[0].Name)
	assert.Equal(t, "Drinks", cats[1].Name)
}

func TestRenameCategory_CascadesToItems(t *testing.T) {
	s, rec := newTestService(t)
	ctx := context.Background()
	tenantID, other := uuid.New(), uuid.New()

	cat, err := s.CreateCategory(ctx, tenantID, CategoryInput{Name: "Pizza"})
	require.NoError(t, err)
	for _, name := range []string{"Margherita", "Pepperoni", "Funghi"} {
		mustItem(t, s, tenantID, name, "Pizza", 10)
	}
	mustItem(t, s, tenantID, "Cola", "Drinks", 2)
	foreign := mustItem(t, s, other, "Theirs", "Pizza", 10)

	n, err := s.RenameCategory(ctx, tenantID, cat.ID, "Pizzas")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	items, err := s.ListItems(ctx, tenantID)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, it := range items {
		counts[it.Category]++
	}
	assert.Equal(t, map[string]int{"Pizzas": 3, "Drinks": 1}, counts)

	cats, err := s.ListCategories(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Pizzas", cats[0].Name)

	untouched, err := s.GetItem(ctx, other, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", untouched.Category)

	assert.Equal(t, []string{"category_renamed"}, rec.Types(events.TopicMenu))

	again, err := s.RenameCategory(ctx, tenantID, cat.ID, "Pizzas")
	require.NoError(t, err)
	assert.Zero(t, again)
	assert.Len(t, rec.Types(events.TopicMenu), 1)
}

func TestRenameCategory_ConflictLeavesItemsAlone(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	pizza, err := s.CreateCategory(ctx, tenantID, CategoryInput{Name: "Pizza"})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, tenantID, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	item := mustItem(t, s, tenantID, "Margherita", "Pizza", 10)

	_, err = s.RenameCategory(ctx, tenantID, pizza.ID, "Drinks")
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.GetItem(ctx, tenantID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", got.Category)

	_, err = s.RenameCategory(ctx, tenantID, uuid.New(), "X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCategory_WithoutRename(t *testing.T) {
	s, rec := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	cat, err := s.CreateCategory(ctx, tenantID, CategoryInput{Name: "Pizza"})
	require.NoError(t, err)

	got, n, err := s.UpdateCategory(ctx, tenantID, cat.ID, CategoryPatch{DisplayOrder: ptr(7), Description: ptr("Stone baked")})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 7, got.DisplayOrder)
	assert.Equal(t, "Stone baked", got.Description)
	assert.Empty(t, rec.Events())

	require.NoError(t, s.DeleteCategory(ctx, tenantID, cat.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, tenantID, cat.ID), ErrNotFound)
}

func TestCartItem(t *testing.T) {
	m := MenuItem{ID: uuid.New(), Name: "Margherita", Price: 9.99, Category: "Pizza", Available: true}
	ci := m.CartItem()
	assert.Equal(t, m.ID.String(), ci.ID)
	assert.Equal(t, 9.99, ci.Price)
	assert.True(t, ci.Available)
}
