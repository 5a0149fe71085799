package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_EmptyShape(t *testing.T) {
	data, err := Marshal(Empty())
	require.NoError(t, err)

	assert.JSONEq(t, `{"restaurantId":null,"restaurantName":null,"items":[]}`, string(data))
}

func TestSnapshot_BoundShape(t *testing.T) {
	c := Empty().AddItem(margherita, "acme", "Acme Pizza").SetInstructions("p1", "well done")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"restaurantId": "acme",
		"restaurantName": "Acme Pizza",
		"items": [{
			"menuItem": {"id":"p1","name":"Margherita","description":"","price":9.99,"category":"Pizza","available":true},
			"quantity": 1,
			"specialInstructions": "well done"
		}]
	}`, string(data))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	carts := []Cart{
		Empty(),
		Empty().AddItem(margherita, "acme", "Acme Pizza"),
		Empty().AddItem(margherita, "acme", "Acme Pizza").
			AddItem(calzone, "acme", "Acme Pizza").
			SetQuantity("p2", 3).
			SetInstructions("p1", "no onions").
			SetAddOns("p2", []AddOn{{Name: "Ricotta", Price: 1.25}}),
		Empty().AddItem(ramen, "beta", "Beta Noodles"),
	}

	for _, c := range carts {
		data, err := Marshal(c)
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.Equal(t, c, Empty().Load(c.Snapshot()))
	}
}

func TestFromSnapshot_Normalises(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		bound bool
		items int
	}{
		{name: "items without restaurant", raw: `{"restaurantId":null,"items":[{"menuItem":{"id":"p1"},"quantity":1}]}`},
		{name: "restaurant without items", raw: `{"restaurantId":"acme","restaurantName":"Acme","items":[]}`},
		{name: "zero quantity dropped", raw: `{"restaurantId":"acme","items":[{"menuItem":{"id":"p1"},"quantity":0},{"menuItem":{"id":"p2"},"quantity":2}]}`, bound: true, items: 1},
		{name: "only invalid lines", raw: `{"restaurantId":"acme","items":[{"menuItem":{"id":""},"quantity":3}]}`},
		{name: "duplicate lines merged", raw: `{"restaurantId":"acme","items":[{"menuItem":{"id":"p1"},"quantity":1},{"menuItem":{"id":"p1"},"quantity":2}]}`, bound: true, items: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Unmarshal([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.bound, c.Bound())
			assert.Len(t, c.Items(), tt.items)
			assert.True(t, consistent(c))
		})
	}
}

func TestFromSnapshot_QuantitiesCapped(t *testing.T) {
	raw := `{"restaurantId":"acme","items":[` +
		`{"menuItem":{"id":"p1"},"quantity":9223372036854775807},` +
		`{"menuItem":{"id":"p1"},"quantity":9223372036854775807},` +
		`{"menuItem":{"id":"p2"},"quantity":600},` +
		`{"menuItem":{"id":"p2"},"quantity":600}]}`

	c, err := Unmarshal([]byte(raw))
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, MaxQuantity, items[0].Quantity)
	assert.Equal(t, MaxQuantity, items[1].Quantity)
	assert.Equal(t, 2*MaxQuantity, c.ItemCount())
}

func TestUnmarshal_Garbage(t *testing.T) {
	c, err := Unmarshal([]byte("{not json"))
	assert.Error(t, err)
	assert.False(t, c.Bound())
}
