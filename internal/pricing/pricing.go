// Package pricing derives cart totals from line items.
package pricing

import "math"

// Line is one priced entry: a unit price, the selected add-on prices and a quantity.
type Line struct {
	UnitPrice float64
	AddOns    []float64
	Quantity  int
}

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
}

type Calculator struct {
	DeliveryFee float64
	TaxRate     float64
}

var Default = Calculator{DeliveryFee: 5, TaxRate: 0.05}

// Calculate recomputes every total from scratch. The delivery fee applies only
// when there is at least one line.
func (c Calculator) Calculate(lines []Line) Totals {
	var subtotal float64
	for _, l := range lines {
		unit := l.UnitPrice
		for _, a := range l.AddOns {
			unit += a
		}
		subtotal += unit * float64(l.Quantity)
	}
	subtotal = Round2(subtotal)

	var fee float64
	if len(lines) > 0 {
		fee = c.DeliveryFee
	}

	taxes := Round2(subtotal * c.TaxRate)

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Taxes:       taxes,
		Total:       Round2(subtotal + fee + taxes),
	}
}

func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
