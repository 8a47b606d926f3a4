// Package output provides utilities for formatting and displaying schedule
// and tax results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/format"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Writer renders results with a fixed currency scale.
type Writer struct {
	out   io.Writer
	scale int32
}

// NewWriter returns a Writer printing amounts with scale fraction digits.
func NewWriter(out io.Writer, scale int32) *Writer {
	return &Writer{out: out, scale: scale}
}

// Write renders result, a *loans.Schedule or *loans.TaxResolution, in the
// named output format.
func (w *Writer) Write(outputFormat string, result interface{}) error {
	if outputFormat == constants.OutputFormatJSON {
		return w.JSON(result)
	}

	switch r := result.(type) {
	case *loans.Schedule:
		if outputFormat == constants.OutputFormatCSV {
			w.CsvSchedule(r)
		} else {
			w.PrettySchedule(r)
		}
	case *loans.TaxResolution:
		if outputFormat == constants.OutputFormatCSV {
			w.CsvTax(r)
		} else {
			w.PrettyTax(r)
		}
	default:
		return fmt.Errorf("cannot render result of type %T", result)
	}
	return nil
}

// JSON writes result as indented JSON.
func (w *Writer) JSON(result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintf(w.out, "%s\n", data)
	return err
}

func (w *Writer) amount(d decimal.Decimal) string {
	return format.Amount(d, w.scale)
}

// PrettySchedule outputs a human-readable rather than machine-readable table.
func (w *Writer) PrettySchedule(s *loans.Schedule) {
	p := message.NewPrinter(language.English)

	_, _ = fmt.Fprintf(w.out, "--- Repayment schedule, disbursed %s ---\n", s.DisbursementDate.Format(constants.DateLayout))
	_, _ = fmt.Fprintf(w.out, "Principal: %s", w.amount(s.Principal))
	if !s.Principal.Equal(s.RequestedPrincipal) {
		_, _ = fmt.Fprintf(w.out, " (requested %s)", w.amount(s.RequestedPrincipal))
	}
	_, _ = fmt.Fprintf(w.out, "\nNet disbursed: %s\n", w.amount(s.NetDisbursedAmount))
	if !s.DisbursementCharges.IsZero() {
		_, _ = fmt.Fprintf(w.out, "Disbursement charges: %s\n", w.amount(s.DisbursementCharges))
	}
	_, _ = fmt.Fprintf(w.out, "\n#   | Due date   | Principal | Interest | Fees | Tax | Total | Balance\n")
	_, _ = fmt.Fprintf(w.out, "___ | __________ | _________ | ________ | ____ | ___ | _____ | _______\n")
	for _, period := range s.Periods {
		_, _ = p.Fprintf(w.out, "%-3d | %s | %s | %s | %s | %s | %s | %s\n",
			period.Number,
			period.DueDate.Format(constants.DateLayout),
			w.amount(period.PrincipalDue),
			w.amount(period.InterestDue),
			w.amount(period.FeeDue),
			w.amount(period.TaxPortion),
			w.amount(period.TotalDue),
			w.amount(period.OutstandingBalance),
		)
	}
	_, _ = p.Fprintf(w.out, "\nTotals over %d periods: principal %s, interest %s, fees %s, taxes %s, repayment %s\n",
		len(s.Periods),
		w.amount(s.Totals.Principal),
		w.amount(s.Totals.Interest),
		w.amount(s.Totals.Fees),
		w.amount(s.Totals.Taxes),
		w.amount(s.Totals.Repayment),
	)
}

// CsvSchedule outputs one row per period in comma-separated value format.
func (w *Writer) CsvSchedule(s *loans.Schedule) {
	_, _ = fmt.Fprintf(w.out, `"period","fromDate","dueDate","principal","interest","fees","tax","total","balance"`+"\n")
	for _, period := range s.Periods {
		_, _ = fmt.Fprintf(w.out, `"%d","%s","%s","%s","%s","%s","%s","%s","%s"`+"\n",
			period.Number,
			period.FromDate.Format(constants.DateLayout),
			period.DueDate.Format(constants.DateLayout),
			format.Plain(period.PrincipalDue, w.scale),
			format.Plain(period.InterestDue, w.scale),
			format.Plain(period.FeeDue, w.scale),
			format.Plain(period.TaxPortion, w.scale),
			format.Plain(period.TotalDue, w.scale),
			format.Plain(period.OutstandingBalance, w.scale),
		)
	}
}

// PrettyTax outputs the tax breakdown as a table.
func (w *Writer) PrettyTax(r *loans.TaxResolution) {
	_, _ = fmt.Fprintf(w.out, "--- Tax pre-calculation ---\n")
	_, _ = fmt.Fprintf(w.out, "ID  | Type       | Value | Amount\n")
	_, _ = fmt.Fprintf(w.out, "__  | __________ | _____ | ______\n")
	for _, tax := range r.Taxes {
		_, _ = fmt.Fprintf(w.out, "%-3d | %-10s | %s | %s\n", tax.ID, tax.Type, tax.TaxValue.String(), w.amount(tax.Amount))
	}
	_, _ = fmt.Fprintf(w.out, "\nPrincipal: %s\nTotal tax: %s\nFinal amount: %s\n",
		w.amount(r.RequestedPrincipal), w.amount(r.TotalTax), w.amount(r.AdjustedPrincipal))
}

// CsvTax outputs one row per tax followed by a total row.
func (w *Writer) CsvTax(r *loans.TaxResolution) {
	_, _ = fmt.Fprintf(w.out, `"id","type","taxValue","amount"`+"\n")
	for _, tax := range r.Taxes {
		_, _ = fmt.Fprintf(w.out, `"%d","%s","%s","%s"`+"\n", tax.ID, csvEscape(tax.Type), tax.TaxValue.String(), format.Plain(tax.Amount, w.scale))
	}
	_, _ = fmt.Fprintf(w.out, `"total","","","%s"`+"\n", format.Plain(r.TotalTax, w.scale))
}

// Errors writes every field error of err, one per line, or err itself
// when it carries none.
func (w *Writer) Errors(err error) {
	fieldErrs := apierrors.FieldErrors(err)
	if len(fieldErrs) == 0 {
		_, _ = fmt.Fprintf(w.out, "error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%d validation error(s):\n", len(fieldErrs))
	for _, fe := range fieldErrs {
		_, _ = fmt.Fprintf(w.out, "  %s: %s (%s)\n", fe.Field(), fe.DefaultMessage, fe.MessageKey)
	}
}

func csvEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
