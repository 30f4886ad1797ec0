// README: Currency helpers shared across modules.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundCents rounds v to two decimal places, half away from zero. Non-finite
// values are returned unchanged.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
