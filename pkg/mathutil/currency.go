// Package mathutil provides common decimal helpers for money amounts.
package mathutil

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Rounder rounds money to a currency's minor-unit precision.
type Rounder struct {
	Scale int32
	Mode  string
}

// NewRounder validates the rounding mode and returns a Rounder. An empty mode
// means half-up.
func NewRounder(scale int32, mode string) (Rounder, error) {
	if scale < 0 {
		return Rounder{}, fmt.Errorf("currency scale must not be negative, got %d", scale)
	}
	switch mode {
	case "":
		mode = constants.RoundingHalfUp
	case constants.RoundingHalfUp, constants.RoundingHalfEven:
	default:
		return Rounder{}, fmt.Errorf("expected rounding mode of %s or %s, got %s",
			constants.RoundingHalfUp, constants.RoundingHalfEven, mode)
	}
	return Rounder{Scale: scale, Mode: mode}, nil
}

// DefaultRounder rounds half-up to two decimals.
func DefaultRounder() Rounder {
	return Rounder{Scale: constants.DefaultCurrencyScale, Mode: constants.RoundingHalfUp}
}

// Round rounds val to the configured scale.
func (r Rounder) Round(val decimal.Decimal) decimal.Decimal {
	if r.Mode == constants.RoundingHalfEven {
		return val.RoundBank(r.Scale)
	}
	return val.Round(r.Scale)
}

// Div divides with enough precision for rate math; the result is not
// rounded to currency.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, constants.RateDivisionPrecision)
}

// ApplyPercentage applies a percentage to a value, e.g. 2.5 percent of 1000
// is 25.
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).DivRound(hundred, constants.RateDivisionPrecision)
}

// Min returns the minimum of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi decimal.Decimal) decimal.Decimal {
	return Min(Max(val, lo), hi)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
