// Package format renders money amounts for human-readable output.
package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount returns amount with English thousands separators and exactly
// scale fraction digits (e.g., "-1,234.56").
func Amount(amount decimal.Decimal, scale int32) string {
	return AmountIn(language.English, amount, scale)
}

// AmountIn is Amount using the separators of tag (e.g., "1.234,56" for de).
func AmountIn(tag language.Tag, amount decimal.Decimal, scale int32) string {
	fixed := amount.Abs().StringFixed(scale)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	p := message.NewPrinter(tag)
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return amount.StringFixed(scale)
	}
	formatted := p.Sprintf("%d", whole)
	if fracPart != "" {
		formatted += decimalSeparator(p) + fracPart
	}
	if amount.Round(scale).IsNegative() {
		return "-" + formatted
	}
	return formatted
}

// Plain returns amount with a '.' decimal point and no grouping, for
// machine-readable output.
func Plain(amount decimal.Decimal, scale int32) string {
	return amount.StringFixed(scale)
}

func decimalSeparator(p *message.Printer) string {
	sample := p.Sprintf("%.1f", 0.5)
	if len(sample) < 3 {
		return "."
	}
	return strings.TrimSuffix(strings.TrimPrefix(sample, "0"), "5")
}
