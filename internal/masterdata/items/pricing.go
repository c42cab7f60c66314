package items

import "math"

// Prices holds the derived discount tiers for an item.
type Prices struct {
	SecondPrice    float64
	WholesalePrice float64
}

// ComputePrices applies the two sequential discount tiers to the unit price.
// Both results are rounded to two decimals. For discounts within [0,100] the
// result satisfies WholesalePrice <= SecondPrice <= unitPrice.
func ComputePrices(unitPrice, discount1, discount2 float64) Prices {
	second := round2(unitPrice * (1 - discount1/100))
	wholesale := round2(second * (1 - discount2/100))
	return Prices{SecondPrice: second, WholesalePrice: wholesale}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
