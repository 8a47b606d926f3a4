// Package params turns a raw parameter bag into typed, presence-aware
// fields. It performs no business validation: it only rejects unknown keys
// and records parse failures next to the field they belong to.
package params

import (
	"fmt"
	"sort"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
)

// Bag is a decoded request payload: a flat name to value map whose nested
// arrays (charges, taxes) hold objects of the same shape.
type Bag map[string]interface{}

// Has reports whether key was supplied, even with a null value.
func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Keys returns the bag's keys in sorted order.
func (b Bag) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value of key when it is a string.
func (b Bag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// KeySet is a declared set of supported parameter names.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from names.
func NewKeySet(names ...string) KeySet {
	set := make(KeySet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports whether name is supported.
func (s KeySet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Supported parameter sets. Schedule calculation and tax pre-calculation
// accept different top-level keys; array elements have their own sets.
var (
	ScheduleParameters = NewKeySet("id", "clientId", "groupId", "loanType", "calendarId",
		"productId", "accountNo", "externalId", "fundId", "loanOfficerId", "loanPurposeId",
		"transactionProcessingStrategyId", "principal", "inArrearsTolerance", "interestRatePerPeriod",
		"repaymentEvery", "numberOfRepayments", "loanTermFrequency", "loanTermFrequencyType",
		"repaymentFrequencyType", "interestRateFrequencyType", "amortizationType", "interestType",
		"interestCalculationPeriodType", "expectedDisbursementDate", "repaymentsStartingFromDate",
		"graceOnPrincipalPayment", "graceOnInterestPayment", "graceOnInterestCharged",
		"interestChargedFromDate", "submittedOnDate", "submittedOnNote", "locale", "dateFormat",
		"charges", "collateral", "syncDisbursementWithMeeting", "linkAccountId", "depositArray",
		"taxArray", "customerName", "phone", "emailId", "taxes")

	ChargeElementParameters = NewKeySet("id", "chargeId", "amount", "chargeTimeType",
		"chargeCalculationType", "dueDate")

	TaxParameters = NewKeySet("taxes", "principal", "locale", "charges", "intrest", "deposit")

	TaxElementParameters = NewKeySet("id", "taxValue", "type")
)

// CheckSupported fails with a MalformedInputError naming every key of bag
// that is not in supported. Scope names the object being checked ("" for
// the top level, "charges[1]" for an element).
func CheckSupported(scope string, bag Bag, supported KeySet) error {
	var unsupported []string
	for key := range bag {
		if !supported.Contains(key) {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) > 0 {
		return apierrors.NewUnsupportedParameters(scope, unsupported)
	}
	return nil
}

// Elements returns the objects of the array stored under key. A missing or
// null key yields nil. Anything that is not an array of objects is
// malformed input.
func (b Bag) Elements(key string) ([]Bag, error) {
	raw, ok := b[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, apierrors.NewMalformed(key, "expected an array")
	}
	out := make([]Bag, 0, len(items))
	for i, item := range items {
		switch obj := item.(type) {
		case map[string]interface{}:
			out = append(out, Bag(obj))
		case Bag:
			out = append(out, obj)
		default:
			return nil, apierrors.NewMalformed(ElementScope(key, i+1), "expected an object")
		}
	}
	return out, nil
}

// ElementScope formats the 1-based scope of an array element.
func ElementScope(key string, index int) string {
	return fmt.Sprintf("%s[%d]", key, index)
}
