package travel

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// TripDays is the number of billable days between departure and return.
// Partial days round up, so a half-day trip bills a full day.
func TripDays(departure, ret time.Time) int {
	d := ret.Sub(departure)
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// PerDiemCost returns rate × TripDays. A non-positive rate yields nil so callers
// can tell "not entered yet" apart from a zero cost.
func PerDiemCost(rate decimal.Decimal, departure, ret time.Time) *decimal.Decimal {
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	cost := rate.Mul(decimal.NewFromInt(int64(TripDays(departure, ret))))
	return &cost
}

// SumCosts adds up booking costs.
func SumCosts(costs []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c)
	}
	return total
}
