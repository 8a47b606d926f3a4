package validation

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateMode checks the requested operation.
func ValidateMode(mode string) error {
	if mode != constants.ModeSchedule && mode != constants.ModeTax {
		return fmt.Errorf("expected mode of %s or %s, got %s", constants.ModeSchedule, constants.ModeTax, mode)
	}
	return nil
}

// ValidateDisbursementChargeMode checks where disbursement charges are booked.
func ValidateDisbursementChargeMode(mode string) error {
	if mode != constants.DisbursementChargesDeduct && mode != constants.DisbursementChargesFirstPeriod {
		return fmt.Errorf("expected disbursement charge mode of %s or %s, got %s",
			constants.DisbursementChargesDeduct, constants.DisbursementChargesFirstPeriod, mode)
	}
	return nil
}
