package params

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field is one normalized parameter.
//
// Supplied is true when the key exists in the bag, Present when it also
// carries a non-null value. Err is set when a present value could not be
// parsed; Value is then the zero value and must not be used.
type Field[T any] struct {
	Value    T
	Raw      interface{}
	Supplied bool
	Present  bool
	Err      error
}

// Valid reports whether the field holds a usable parsed value.
func (f Field[T]) Valid() bool {
	return f.Present && f.Err == nil
}

// Missing reports whether no value was given at all.
func (f Field[T]) Missing() bool {
	return !f.Present
}

// Invalid reports whether a value was given but could not be parsed.
func (f Field[T]) Invalid() bool {
	return f.Present && f.Err != nil
}

func extract[T any](bag Bag, key string, parse func(interface{}) (T, error)) Field[T] {
	raw, supplied := bag[key]
	f := Field[T]{Raw: raw, Supplied: supplied}
	if !supplied || raw == nil {
		return f
	}
	if s, ok := raw.(string); ok && isBlank(s) {
		return f
	}
	f.Present = true
	v, err := parse(raw)
	if err != nil {
		f.Err = err
		return f
	}
	f.Value = v
	return f
}

// ExtractDecimal normalizes key as a locale-aware decimal.
func ExtractDecimal(bag Bag, key string, p Parser) Field[decimal.Decimal] {
	return extract(bag, key, p.Decimal)
}

// ExtractInteger normalizes key as a whole number.
func ExtractInteger(bag Bag, key string, p Parser) Field[int64] {
	return extract(bag, key, p.Integer)
}

// ExtractDate normalizes key as a calendar date.
func ExtractDate(bag Bag, key string, p Parser) Field[time.Time] {
	return extract(bag, key, p.Date)
}

// ExtractBool normalizes key as a boolean.
func ExtractBool(bag Bag, key string, p Parser) Field[bool] {
	return extract(bag, key, p.Bool)
}

// ExtractString normalizes key as a string. Blank strings count as absent.
func ExtractString(bag Bag, key string, p Parser) Field[string] {
	return extract(bag, key, p.String)
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
