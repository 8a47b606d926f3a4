// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/params"
)

// ValidScheduleBag returns a fresh schedule request that passes every rule:
// 10,000 over twelve monthly declining-balance installments at 1% a month,
// disbursed on 2024-01-10. Values mirror what a JSON decoder produces.
func ValidScheduleBag() params.Bag {
	return params.Bag{
		"productId":                       float64(1),
		"principal":                       "10,000.00",
		"loanTermFrequency":               float64(12),
		"loanTermFrequencyType":           float64(2),
		"numberOfRepayments":              float64(12),
		"repaymentEvery":                  float64(1),
		"repaymentFrequencyType":          float64(2),
		"interestRatePerPeriod":           float64(1),
		"interestType":                    float64(1),
		"interestCalculationPeriodType":   float64(0),
		"amortizationType":                float64(0),
		"expectedDisbursementDate":        "10 January 2024",
		"transactionProcessingStrategyId": float64(1),
		"locale":                          "en",
		"dateFormat":                      "dd MMMM yyyy",
	}
}

// ValidTaxBag returns a tax pre-calculation request for 1000 with a 2.5%
// and a flat 15 tax.
func ValidTaxBag() params.Bag {
	return params.Bag{
		"principal": "1000",
		"locale":    "en",
		"taxes": []interface{}{
			map[string]interface{}{"id": float64(1), "taxValue": "2.5", "type": "Percentage"},
			map[string]interface{}{"id": float64(2), "taxValue": "15", "type": "Flat"},
		},
	}
}

// With returns a copy of bag with key set to value. A nil value deletes the
// key.
func With(bag params.Bag, key string, value interface{}) params.Bag {
	out := make(params.Bag, len(bag)+1)
	for k, v := range bag {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

// FindFieldError finds the first error for field (as rendered by
// FieldError.Field, e.g. "charges[1].chargeId").
// Returns a pointer to the error if found, nil otherwise.
func FindFieldError(errs []apierrors.FieldError, field string) *apierrors.FieldError {
	for i := range errs {
		if errs[i].Field() == field {
			return &errs[i]
		}
	}
	return nil
}
