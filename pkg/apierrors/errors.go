// Package apierrors holds the error taxonomy shared by the loan engine and
// its callers.
//
// Three categories exist and must stay distinguishable:
//
//   - MalformedInput: the payload could not be read or carried unknown keys.
//     Fatal for the request, raised before any business rule runs.
//   - ValidationFailed: one or more field-scoped rule violations, always
//     reported as a single ordered batch.
//   - InternalInvariant: a generator-stage assumption broke although the
//     validator accepted the request. A programming defect; its detail must
//     not be shown to end users as guidance.
//
// Use errors.Is with the sentinels below, or errors.As with the structured
// types when the detail is needed.
package apierrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMalformedInput is returned for unreadable payloads and unknown keys.
	ErrMalformedInput = errors.New("malformed input")

	// ErrValidationFailed is returned when at least one field rule failed.
	ErrValidationFailed = errors.New("validation errors exist")

	// ErrInternalInvariant is returned when the generator detects a broken
	// invariant on input the validator accepted.
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// ValidationErrorsExistKey is the aggregate message key for a failed batch.
const ValidationErrorsExistKey = "validation.msg.validation.errors.exist"

// FieldError is one rule violation scoped to a request field. ArrayIndex is
// 1-based and zero when the field is not an array element.
type FieldError struct {
	Resource       string        `json:"resource"`
	Parameter      string        `json:"parameter"`
	ArrayIndex     int           `json:"arrayIndex,omitempty"`
	ArrayPart      string        `json:"arrayPart,omitempty"`
	MessageKey     string        `json:"messageKey"`
	DefaultMessage string        `json:"defaultMessage"`
	RejectedValues []interface{} `json:"rejectedValues,omitempty"`
}

// Field returns the user-facing path of the offending field, e.g.
// "principal" or "charges[1].chargeId".
func (e FieldError) Field() string {
	if e.ArrayIndex == 0 {
		return e.Parameter
	}
	return fmt.Sprintf("%s[%d].%s", e.Parameter, e.ArrayIndex, e.ArrayPart)
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field(), e.DefaultMessage)
}

// ValidationError is the aggregate returned when the validator rejects a
// request. Errors keeps rule-declaration order.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field())
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// MessageKey returns the aggregate message key.
func (e *ValidationError) MessageKey() string {
	return ValidationErrorsExistKey
}

// MalformedInputError names the keys or payload fragment that could not be
// accepted. Scope is empty for the top level and names the array element
// (e.g. "charges[2]") for nested objects.
type MalformedInputError struct {
	Scope       string   `json:"scope,omitempty"`
	Unsupported []string `json:"unsupportedParameters,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// NewUnsupportedParameters builds a MalformedInputError for unknown keys.
// The keys are sorted so the error is deterministic.
func NewUnsupportedParameters(scope string, keys []string) *MalformedInputError {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &MalformedInputError{Scope: scope, Unsupported: sorted}
}

// NewMalformed builds a MalformedInputError for an unreadable payload.
func NewMalformed(scope, reason string) *MalformedInputError {
	return &MalformedInputError{Scope: scope, Reason: reason}
}

func (e *MalformedInputError) Error() string {
	prefix := ErrMalformedInput.Error()
	if e.Scope != "" {
		prefix = fmt.Sprintf("%s in %s", prefix, e.Scope)
	}
	if len(e.Unsupported) > 0 {
		return fmt.Sprintf("%s: unsupported parameter(s) %s", prefix, strings.Join(e.Unsupported, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// InvariantViolation reports a generator-stage defect.
type InvariantViolation struct {
	Op     string
	Detail string
}

// NewInvariantViolation formats an InvariantViolation for op.
func NewInvariantViolation(op, format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)}
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrInternalInvariant.Error(), e.Op, e.Detail)
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInternalInvariant
}

// IsClientError returns true if the error is caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedInput) || errors.Is(err, ErrValidationFailed)
}

// IsInternal returns true if the error is a programming defect.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternalInvariant)
}

// FieldErrors extracts the ordered field errors from err, or nil.
func FieldErrors(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return nil
}
