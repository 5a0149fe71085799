package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_Empty(t *testing.T) {
	got := Default.Calculate(nil)

	assert.Equal(t, Totals{}, got)
}

func TestCalculate_TwoOfSameItem(t *testing.T) {
	got := Default.Calculate([]Line{{UnitPrice: 9.99, Quantity: 2}})

	assert.Equal(t, 19.98, got.Subtotal)
	assert.Equal(t, 5.0, got.DeliveryFee)
	assert.Equal(t, 1.0, got.Taxes)
	assert.Equal(t, 25.98, got.Total)
}

func TestCalculate_AddOnsMultiplyByQuantity(t *testing.T) {
	got := Default.Calculate([]Line{
		{UnitPrice: 10, AddOns: []float64{1.5, 0.5}, Quantity: 3},
		{UnitPrice: 2.25, Quantity: 1},
	})

	assert.Equal(t, 38.25, got.Subtotal)
	assert.Equal(t, 1.91, got.Taxes)
	assert.Equal(t, 45.16, got.Total)
}

func TestCalculate_ConfiguredFee(t *testing.T) {
	calc := Calculator{DeliveryFee: 40, TaxRate: 0.05}

	got := calc.Calculate([]Line{{UnitPrice: 100, Quantity: 1}})

	assert.Equal(t, 40.0, got.DeliveryFee)
	assert.Equal(t, 5.0, got.Taxes)
	assert.Equal(t, 145.0, got.Total)
}

func TestCalculate_TotalsConsistency(t *testing.T) {
	prices := []float64{0, 0.01, 0.1, 0.33, 1.99, 9.99, 12.5, 19.95, 99.99}
	for _, p := range prices {
		for q := 1; q <= 7; q++ {
			lines := []Line{{UnitPrice: p, Quantity: q}, {UnitPrice: p / 3, AddOns: []float64{0.07}, Quantity: q + 1}}
			got := Default.Calculate(lines)

			assert.Equal(t, Round2(got.Subtotal*Default.TaxRate), got.Taxes)
			assert.Equal(t, Round2(got.Subtotal+got.DeliveryFee+got.Taxes), got.Total)
		}
	}
}

func TestItemCount(t *testing.T) {
	assert.Equal(t, 0, ItemCount(nil))
	assert.Equal(t, 5, ItemCount([]Line{{Quantity: 2}, {Quantity: 3}}))
}
