package loans

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Apportion spreads capitalized taxes and charges over a generated schedule
// and returns a new schedule; s is left untouched.
func (g *AmortizationScheduleGenerator) Apportion(s *Schedule, taxes TaxResolution, charges []ChargeSpec) (*Schedule, error) {
	const op = "loans.Apportion"

	out := *s
	out.Periods = append([]Period(nil), s.Periods...)
	out.Taxes = append([]TaxAmount(nil), taxes.Taxes...)
	if !taxes.RequestedPrincipal.IsZero() {
		out.RequestedPrincipal = taxes.RequestedPrincipal
	}

	g.apportionTax(&out, taxes.TotalTax)

	totalInterest := decimal.Zero
	for _, p := range out.Periods {
		totalInterest = totalInterest.Add(p.InterestDue)
	}

	disbursementCharges := decimal.Zero
	for _, c := range charges {
		switch c.TimeType {
		case ChargeInstallmentFee:
			for i := range out.Periods {
				p := &out.Periods[i]
				fee := g.installmentFee(c, out.Principal, p.PrincipalDue, p.InterestDue)
				p.FeeDue = p.FeeDue.Add(fee)
			}
		case ChargeSpecifiedDueDate:
			amount := g.chargeAmount(c, out.Principal, totalInterest)
			if c.DueDate == nil || !c.DueDate.After(out.DisbursementDate) {
				disbursementCharges = disbursementCharges.Add(amount)
				continue
			}
			i := periodIndexFor(out.Periods, *c.DueDate)
			out.Periods[i].FeeDue = out.Periods[i].FeeDue.Add(amount)
		default:
			disbursementCharges = disbursementCharges.Add(g.chargeAmount(c, out.Principal, totalInterest))
		}
	}

	out.DisbursementCharges = decimal.Zero
	out.NetDisbursedAmount = out.RequestedPrincipal
	if g.opts.DisbursementCharges == constants.DisbursementChargesFirstPeriod {
		out.Periods[0].FeeDue = out.Periods[0].FeeDue.Add(disbursementCharges)
	} else {
		out.DisbursementCharges = disbursementCharges
		out.NetDisbursedAmount = out.RequestedPrincipal.Sub(disbursementCharges)
	}
	if out.NetDisbursedAmount.IsNegative() {
		g.logger.Warn(fmt.Sprintf("disbursement charges %s exceed the disbursed principal %s",
			disbursementCharges, out.RequestedPrincipal),
			zap.String("op", op),
		)
	}

	for i := range out.Periods {
		p := &out.Periods[i]
		p.TotalDue = p.PrincipalDue.Add(p.InterestDue).Add(p.FeeDue)
	}
	if err := checkSchedule(op, &out); err != nil {
		return nil, err
	}
	out.Totals = summarize(&out)
	return &out, nil
}

// apportionTax assigns each period a share of the capitalized tax in
// proportion to its principal. The final period takes the rounding residual.
func (g *AmortizationScheduleGenerator) apportionTax(s *Schedule, totalTax decimal.Decimal) {
	if totalTax.IsZero() || s.Principal.IsZero() {
		return
	}
	assigned := decimal.Zero
	last := len(s.Periods) - 1
	for i := range s.Periods[:last] {
		share := g.opts.Rounder.Round(mathutil.Div(s.Periods[i].PrincipalDue.Mul(totalTax), s.Principal))
		s.Periods[i].TaxPortion = share
		assigned = assigned.Add(share)
	}
	s.Periods[last].TaxPortion = totalTax.Sub(assigned)
}

// chargeAmount resolves a one-off charge against the loan as a whole.
func (g *AmortizationScheduleGenerator) chargeAmount(c ChargeSpec, principal, interest decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.CalculationType {
	case ChargePercentOfAmount:
		amount = mathutil.ApplyPercentage(principal, c.Amount)
	case ChargePercentOfAmountAndInterest:
		amount = mathutil.ApplyPercentage(principal.Add(interest), c.Amount)
	case ChargePercentOfInterest:
		amount = mathutil.ApplyPercentage(interest, c.Amount)
	default:
		amount = c.Amount
	}
	return g.opts.Rounder.Round(amount)
}

// installmentFee resolves a per-installment charge for one period.
func (g *AmortizationScheduleGenerator) installmentFee(c ChargeSpec, loanPrincipal, principalDue, interestDue decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.CalculationType {
	case ChargePercentOfAmount:
		amount = mathutil.ApplyPercentage(loanPrincipal, c.Amount)
	case ChargePercentOfAmountAndInterest:
		amount = mathutil.ApplyPercentage(principalDue.Add(interestDue), c.Amount)
	case ChargePercentOfInterest:
		amount = mathutil.ApplyPercentage(interestDue, c.Amount)
	default:
		amount = c.Amount
	}
	return g.opts.Rounder.Round(amount)
}

// periodIndexFor finds the period whose (from, due] window holds date,
// falling back to the final period for dates past the schedule.
func periodIndexFor(periods []Period, date time.Time) int {
	for i, p := range periods {
		if date.After(p.FromDate) && !date.After(p.DueDate) {
			return i
		}
	}
	return len(periods) - 1
}
