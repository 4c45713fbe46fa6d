package billing

import (
	"github.com/cockroachdb/apd/v3"
)

var moneyCtx = apd.BaseContext.WithPrecision(34)

// roundCents rounds a monetary amount to two decimal places using decimal
// arithmetic, so accumulated float noise never leaks into adjustments.
func roundCents(v float64) float64 {
	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return v
	}

	var q apd.Decimal
	if _, err := moneyCtx.Quantize(&q, &d, -2); err != nil {
		return v
	}

	f, err := q.Float64()
	if err != nil {
		return v
	}
	return f
}
