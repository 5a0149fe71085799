package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size    int
		offset, limit int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{-2, 5, 0, 5},
		{2, 0, DefaultPageSize, DefaultPageSize},
		{1, 500, 0, DefaultPageSize},
		{int(^uint(0) >> 1), MaxPageSize, (MaxPage - 1) * MaxPageSize, MaxPageSize},
	}
	for _, tc := range cases {
		off, lim := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.offset, off)
		assert.Equal(t, tc.limit, lim)
	}
}

func TestCalculate_HugePageStaysNonNegative(t *testing.T) {
	huge := int(^uint(0) >> 1)
	off, lim := Calculate(huge, MaxPageSize)
	assert.GreaterOrEqual(t, off, 0)

	m := NewMeta(huge, off, lim, 5)
	assert.Equal(t, MaxPage, m.Page)
	assert.False(t, m.HasNext)
	assert.True(t, m.HasPrev)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(2, 10, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	last := NewMeta(3, 20, 10, 25)
	assert.False(t, last.HasNext)
}
