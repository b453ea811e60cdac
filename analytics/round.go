package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// round rounds v to the given number of decimal places, with halves going
// toward positive infinity.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return roundDecimal(decimal.NewFromFloat(v), places)
}

func roundDecimal(d decimal.Decimal, places int32) float64 {
	return d.Shift(places).Add(half).Floor().Shift(-places).InexactFloat64()
}

// share returns part/total*100, or zero when total is not positive.
func share(part, total float64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(part).Div(decimal.NewFromFloat(total)).Shift(2)
}

// change returns (current-previous)/previous*100, or zero when previous is
// not positive.
func change(current, previous float64) decimal.Decimal {
	if previous <= 0 {
		return decimal.Zero
	}
	c := decimal.NewFromFloat(current)
	p := decimal.NewFromFloat(previous)
	return c.Sub(p).Div(p).Shift(2)
}
