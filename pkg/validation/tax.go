package validation

import (
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/params"
)

// ValidateTax checks a tax pre-calculation request: a positive principal and
// well-formed tax elements.
func (v *Validator) ValidateTax(f *params.TaxRequestFields) (loans.TaxRequest, error) {
	c := newCollector(constants.TaxResource)

	if required(c, top(params.Principal), f.Principal) {
		c.positiveAtScale(top(params.Principal), f.Principal.Value, v.rounder)
	}
	taxes := validateTaxElements(c, f.Taxes)

	if err := c.err(); err != nil {
		return loans.TaxRequest{}, err
	}
	return loans.TaxRequest{Principal: f.Principal.Value, Taxes: taxes}, nil
}
