package items

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputePrices(t *testing.T) {
	prices := ComputePrices(100, 10, 5)
	require.Equal(t, 90.0, prices.SecondPrice)
	require.Equal(t, 85.5, prices.WholesalePrice)
}

func TestComputePricesSingleTierDiscount(t *testing.T) {
	prices := ComputePrices(120, 5, 0)
	require.Equal(t, 114.0, prices.SecondPrice)
	require.Equal(t, 114.0, prices.WholesalePrice)
}

func TestComputePricesZeroDiscounts(t *testing.T) {
	prices := ComputePrices(49.99, 0, 0)
	require.Equal(t, 49.99, prices.SecondPrice)
	require.Equal(t, 49.99, prices.WholesalePrice)
}

func TestComputePricesFullDiscount(t *testing.T) {
	prices := ComputePrices(200, 100, 50)
	require.Equal(t, 0.0, prices.SecondPrice)
	require.Equal(t, 0.0, prices.WholesalePrice)
}

func TestComputePricesOrdering(t *testing.T) {
	cases := []struct {
		unitPrice, d1, d2 float64
	}{
		{100, 10, 5},
		{100, 0, 0},
		{59.95, 12.5, 7.25},
		{1, 99, 1},
		{12345.67, 33, 66},
	}
	for _, tc := range cases {
		prices := ComputePrices(tc.unitPrice, tc.d1, tc.d2)
		require.LessOrEqual(t, prices.WholesalePrice, prices.SecondPrice)
		require.LessOrEqual(t, prices.SecondPrice, tc.unitPrice)
	}
}
