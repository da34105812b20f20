// Package curve builds cumulative planned-versus-actual spend curves.
package curve

import (
	"github.com/huangsam/pmpulse/core/bucket"
	"github.com/huangsam/pmpulse/schema"
	"github.com/shopspring/decimal"
)

var zero = decimal.Zero

// Build spreads total linearly across slots and accumulates actuals, keyed by
// slot key, into a running total. Each point is rounded to a whole currency
// unit. Both series are non-decreasing: a negative total is treated as zero
// and negative per-bucket actuals do not reduce the running sum.
// The last planned point equals the rounded total.
func Build(total decimal.Decimal, slots []bucket.Slot, actuals map[string]decimal.Decimal) []schema.CumulativePoint {
	if len(slots) == 0 {
		return []schema.CumulativePoint{}
	}
	if total.IsNegative() {
		total = zero
	}

	count := decimal.NewFromInt(int64(len(slots)))
	points := make([]schema.CumulativePoint, len(slots))
	actual := zero
	for i, slot := range slots {
		// cumulative planned is computed directly so rounding error never accumulates
		planned := total.Mul(decimal.NewFromInt(int64(i + 1))).Div(count)
		if inc := actuals[slot.Key]; inc.IsPositive() {
			actual = actual.Add(inc)
		}
		points[i] = schema.CumulativePoint{
			Key:               slot.Key,
			Label:             slot.Label,
			CumulativePlanned: wholeUnits(planned),
			CumulativeActual:  wholeUnits(actual),
		}
	}
	return points
}

// Cap keeps only the most recent limit slots.
func Cap(slots []bucket.Slot, limit int) []bucket.Slot {
	if limit > 0 && len(slots) > limit {
		return slots[len(slots)-limit:]
	}
	return slots
}

// wholeUnits rounds half away from zero.
func wholeUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
