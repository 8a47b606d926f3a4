package loans

import (
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// flatTaxLabels are the tax type labels whose taxValue is an amount rather
// than a percentage of principal.
var flatTaxLabels = []string{"flat", "fixed", "amount"}

// IsFlatTax reports whether a tax type label denotes a fixed amount.
func IsFlatTax(label string) bool {
	label = strings.TrimSpace(label)
	for _, flat := range flatTaxLabels {
		if strings.EqualFold(label, flat) {
			return true
		}
	}
	return false
}

// TaxAmountFor computes one tax against principal, rounded with r.
func TaxAmountFor(principal decimal.Decimal, tax TaxSpec, r mathutil.Rounder) decimal.Decimal {
	if IsFlatTax(tax.Type) {
		return r.Round(tax.TaxValue)
	}
	return r.Round(mathutil.ApplyPercentage(principal, tax.TaxValue))
}

// ResolveAdjustedPrincipal capitalizes taxes into principal. Every tax is
// computed against the requested principal, not against a running total, so
// their order does not matter.
func ResolveAdjustedPrincipal(principal decimal.Decimal, taxes []TaxSpec, r mathutil.Rounder) TaxResolution {
	principal = r.Round(principal)
	res := TaxResolution{
		RequestedPrincipal: principal,
		Taxes:              make([]TaxAmount, 0, len(taxes)),
	}
	amounts := make([]decimal.Decimal, 0, len(taxes))
	for _, tax := range taxes {
		amount := TaxAmountFor(principal, tax, r)
		res.Taxes = append(res.Taxes, TaxAmount{
			ID:       tax.ID,
			Type:     tax.Type,
			TaxValue: tax.TaxValue,
			Amount:   amount,
		})
		amounts = append(amounts, amount)
	}
	res.TotalTax = mathutil.Sum(amounts...)
	res.AdjustedPrincipal = principal.Add(res.TotalTax)
	return res
}
