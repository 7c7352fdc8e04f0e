package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds x to places decimals, half away from zero, working on the
// shortest decimal representation of x. 1.0005 rounds to 1.001 even though
// the nearest float64 is slightly below the midpoint.
// NaN and infinities are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Round3 rounds x to three decimals.
func Round3(x float64) float64 {
	return Round(x, 3)
}
