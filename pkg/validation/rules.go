// Package validation checks normalized loan requests against the business
// rules and turns accepted ones into typed requests.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/params"
	"github.com/shopspring/decimal"
)

// Message key suffixes.
const (
	keyBlank            = "cannot.be.blank"
	keyInvalidFormat    = "invalid.format"
	keyNotPositive      = "not.greater.than.zero"
	keyNegative         = "not.zero.or.greater"
	keyOutOfRange       = "is.not.within.expected.range"
	keyNotEnumerated    = "is.not.one.of.expected.enumerations"
	keyNotBoolean       = "must.be.true.or.false"
	keyGraceExceedsTerm = "must.be.less.than.numberOfRepayments"
	keyAboveMaximum     = "cannot.be.greater.than.maximum"
)

// target addresses one field, optionally inside an array element.
type target struct {
	param string
	index int
	part  string
}

func top(param string) target {
	return target{param: param}
}

func element(param string, index int, part string) target {
	return target{param: param, index: index, part: part}
}

func (t target) name() string {
	if t.index == 0 {
		return t.param
	}
	return fmt.Sprintf("%s[%d][%s]", t.param, t.index, t.part)
}

// collector accumulates field errors in the order rules are evaluated.
type collector struct {
	resource string
	errs     []apierrors.FieldError
}

func newCollector(resource string) *collector {
	return &collector{resource: resource}
}

func (c *collector) add(t target, suffix, message string, rejected ...interface{}) {
	key := []string{constants.ValidationMessagePrefix, c.resource, t.param}
	if t.index > 0 {
		key = append(key, t.part)
	}
	key = append(key, suffix)
	c.errs = append(c.errs, apierrors.FieldError{
		Resource:       c.resource,
		Parameter:      t.param,
		ArrayIndex:     t.index,
		ArrayPart:      t.part,
		MessageKey:     strings.Join(key, "."),
		DefaultMessage: message,
		RejectedValues: rejected,
	})
}

// addKey records an error with a fully qualified message key.
func (c *collector) addKey(t target, key, message string, rejected ...interface{}) {
	c.errs = append(c.errs, apierrors.FieldError{
		Resource:       c.resource,
		Parameter:      t.param,
		ArrayIndex:     t.index,
		ArrayPart:      t.part,
		MessageKey:     key,
		DefaultMessage: message,
		RejectedValues: rejected,
	})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &apierrors.ValidationError{Errors: c.errs}
}

// required reports whether f holds a usable value, recording a blank or
// format error otherwise.
func required[T any](c *collector, t target, f params.Field[T]) bool {
	switch {
	case f.Invalid():
		c.add(t, keyInvalidFormat, fmt.Sprintf("The parameter %s has an invalid format: %v.", t.name(), f.Err), f.Raw)
		return false
	case f.Missing():
		c.add(t, keyBlank, fmt.Sprintf("The parameter %s is mandatory.", t.name()))
		return false
	}
	return true
}

// optional reports whether f holds a usable value, recording a format error
// when it was given but unreadable. Absence is not an error.
func optional[T any](c *collector, t target, f params.Field[T]) bool {
	if f.Invalid() {
		c.add(t, keyInvalidFormat, fmt.Sprintf("The parameter %s has an invalid format: %v.", t.name(), f.Err), f.Raw)
		return false
	}
	return f.Valid()
}

func (c *collector) integerGreaterThanZero(t target, n int64) bool {
	if n <= 0 {
		c.add(t, keyNotPositive, fmt.Sprintf("The parameter %s must be greater than 0.", t.name()), n)
		return false
	}
	return true
}

func (c *collector) positiveAmount(t target, d decimal.Decimal) bool {
	if !d.IsPositive() {
		c.add(t, keyNotPositive, fmt.Sprintf("The parameter %s must be greater than 0.", t.name()), d)
		return false
	}
	return true
}

// positiveAtScale requires d to stay above zero once rounded to the currency
// scale.
func (c *collector) positiveAtScale(t target, d decimal.Decimal, r mathutil.Rounder) bool {
	if !r.Round(d).IsPositive() {
		c.add(t, keyNotPositive, fmt.Sprintf("The parameter %s must be greater than 0 when rounded to %d decimal places.",
			t.name(), r.Scale), d)
		return false
	}
	return true
}

func (c *collector) integerAtMost(t target, n, hi int64) bool {
	if n > hi {
		c.add(t, keyAboveMaximum, fmt.Sprintf("The parameter %s must not be greater than %d.", t.name(), hi), n, hi)
		return false
	}
	return true
}

func (c *collector) zeroOrPositiveAmount(t target, d decimal.Decimal) bool {
	if d.IsNegative() {
		c.add(t, keyNegative, fmt.Sprintf("The parameter %s must be greater than or equal to 0.", t.name()), d)
		return false
	}
	return true
}

func (c *collector) zeroOrPositiveInteger(t target, n int64) bool {
	if n < 0 {
		c.add(t, keyNegative, fmt.Sprintf("The parameter %s must be greater than or equal to 0.", t.name()), n)
		return false
	}
	return true
}

func (c *collector) inMinMaxRange(t target, n, lo, hi int64) bool {
	if n < lo || n > hi {
		c.add(t, keyOutOfRange, fmt.Sprintf("The parameter %s must be between %d and %d.", t.name(), lo, hi), n, lo, hi)
		return false
	}
	return true
}

func (c *collector) oneOf(t target, n int64, ok bool, allowed string) bool {
	if !ok {
		c.add(t, keyNotEnumerated, fmt.Sprintf("The parameter %s must be one of %s.", t.name(), allowed), n)
		return false
	}
	return true
}

func (c *collector) notBlank(t target, f params.Field[string]) bool {
	if f.Invalid() || f.Missing() || strings.TrimSpace(f.Value) == "" {
		c.add(t, keyBlank, fmt.Sprintf("The parameter %s is mandatory.", t.name()))
		return false
	}
	return true
}
