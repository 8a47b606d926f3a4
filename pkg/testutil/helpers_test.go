package testutil

import (
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
)

func TestFindFieldError(t *testing.T) {
	errs := []apierrors.FieldError{
		{Parameter: "principal", MessageKey: "validation.msg.loan.principal.cannot.be.blank"},
		{Parameter: "charges", ArrayIndex: 1, ArrayPart: "chargeId", MessageKey: "validation.msg.loan.charges.chargeId.cannot.be.blank"},
		{Parameter: "charges", ArrayIndex: 2, ArrayPart: "amount", MessageKey: "validation.msg.loan.charges.amount.cannot.be.blank"},
	}

	tests := []struct {
		name        string
		field       string
		expectFound bool
		expectedKey string
	}{
		{
			name:        "Find top-level field",
			field:       "principal",
			expectFound: true,
			expectedKey: "validation.msg.loan.principal.cannot.be.blank",
		},
		{
			name:        "Find array element field",
			field:       "charges[2].amount",
			expectFound: true,
			expectedKey: "validation.msg.loan.charges.amount.cannot.be.blank",
		},
		{
			name:        "Wrong index",
			field:       "charges[2].chargeId",
			expectFound: false,
		},
		{
			name:        "Search for non-existent field",
			field:       "productId",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindFieldError(errs, tt.field)

			if tt.expectFound {
				if result == nil {
					t.Errorf("Expected to find %s, but got nil", tt.field)
					return
				}
				if result.MessageKey != tt.expectedKey {
					t.Errorf("Expected key %s, got %s", tt.expectedKey, result.MessageKey)
				}
			} else if result != nil {
				t.Errorf("Expected not to find %s, but found %s", tt.field, result.MessageKey)
			}
		})
	}
}

func TestFindFieldErrorEmptySlice(t *testing.T) {
	if result := FindFieldError(nil, "principal"); result != nil {
		t.Errorf("Expected nil for empty slice, got %+v", result)
	}
}

func TestWith(t *testing.T) {
	base := ValidScheduleBag()

	changed := With(base, "principal", "5")
	if changed["principal"] != "5" {
		t.Errorf("Expected principal 5, got %v", changed["principal"])
	}
	if base["principal"] != "10,000.00" {
		t.Error("With must not modify the original bag")
	}

	removed := With(base, "productId", nil)
	if removed.Has("productId") {
		t.Error("Expected productId to be removed")
	}
}
