package loans

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(constants.PercentageMultiplier)
)

// Options tunes the engine.
type Options struct {
	Rounder             mathutil.Rounder
	DaysInYear          int
	DisbursementCharges string
}

// DefaultOptions returns half-up rounding to two decimals, a 365-day year
// and disbursement charges deducted from the disbursed amount.
func DefaultOptions() Options {
	return Options{
		Rounder:             mathutil.DefaultRounder(),
		DaysInYear:          constants.DaysPerYear,
		DisbursementCharges: constants.DisbursementChargesDeduct,
	}
}

func (o Options) withDefaults() Options {
	if o.Rounder.Mode == "" {
		o.Rounder = mathutil.DefaultRounder()
	}
	if o.DaysInYear <= 0 {
		o.DaysInYear = constants.DaysPerYear
	}
	if o.DisbursementCharges == "" {
		o.DisbursementCharges = constants.DisbursementChargesDeduct
	}
	return o
}

// AmortizationScheduleGenerator turns validated requests into repayment
// schedules. It holds no per-request state and is safe for concurrent use.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
	opts   Options
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger, opts Options) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger, opts: opts.withDefaults()}
}

// Options returns the generator's effective options.
func (g *AmortizationScheduleGenerator) Options() Options {
	return g.opts
}

// PeriodsPerYear returns how many units of f fit in a year.
func PeriodsPerYear(f FrequencyType, daysInYear int) decimal.Decimal {
	switch f {
	case Days:
		return decimal.NewFromInt(int64(daysInYear))
	case Weeks:
		return decimal.NewFromInt(constants.WeeksPerYear)
	case Months:
		return decimal.NewFromInt(constants.MonthsPerYear)
	default:
		return one
	}
}

// Advance moves t forward n units of f. Months and years clamp to the end of
// the target month.
func Advance(t time.Time, f FrequencyType, n int) time.Time {
	switch f {
	case Days:
		return t.AddDate(0, 0, n)
	case Weeks:
		return t.AddDate(0, 0, 7*n)
	case Months:
		return datetime.AddMonths(t, n)
	default:
		return datetime.AddYears(t, n)
	}
}

// DueDate returns the due date of installment k, counted from zero. Every
// date is offset from a fixed anchor rather than from its predecessor, so a
// month-end clamp in one period does not drift into the next. The anchor is
// the repayment start date when given and disbursement otherwise.
func DueDate(req LoanScheduleRequest, k int) time.Time {
	if req.RepaymentsStartingFromDate != nil {
		return Advance(*req.RepaymentsStartingFromDate, req.RepaymentFrequencyType, k*req.RepaymentEvery)
	}
	return Advance(req.ExpectedDisbursementDate, req.RepaymentFrequencyType, (k+1)*req.RepaymentEvery)
}

// DueDates returns the due date of every installment.
func DueDates(req LoanScheduleRequest) []time.Time {
	dates := make([]time.Time, req.NumberOfRepayments)
	for k := range dates {
		dates[k] = DueDate(req, k)
	}
	return dates
}

// AnnualRate converts the per-period nominal rate into a yearly fraction.
func (g *AmortizationScheduleGenerator) AnnualRate(req LoanScheduleRequest) decimal.Decimal {
	perYear := PeriodsPerYear(req.InterestRateFrequencyType, g.opts.DaysInYear)
	return mathutil.Div(req.InterestRatePerPeriod.Mul(perYear), hundred)
}

// PeriodRate is the fraction of principal charged for one full repayment
// interval.
func (g *AmortizationScheduleGenerator) PeriodRate(req LoanScheduleRequest) decimal.Decimal {
	if req.InterestRateFrequencyType == req.RepaymentFrequencyType {
		return mathutil.Div(req.InterestRatePerPeriod.Mul(decimal.NewFromInt(int64(req.RepaymentEvery))), hundred)
	}
	perYear := PeriodsPerYear(req.RepaymentFrequencyType, g.opts.DaysInYear)
	return mathutil.Div(g.AnnualRate(req), perYear).Mul(decimal.NewFromInt(int64(req.RepaymentEvery)))
}

// Installment is the level payment that amortizes balance over m periods at
// periodic rate r.
func Installment(balance, r decimal.Decimal, m int) decimal.Decimal {
	if m <= 0 {
		return balance
	}
	if r.IsZero() {
		return mathutil.Div(balance, decimal.NewFromInt(int64(m)))
	}
	growth := one
	base := one.Add(r)
	for i := 0; i < m; i++ {
		growth = growth.Mul(base).Round(constants.RateDivisionPrecision)
	}
	return mathutil.Div(balance.Mul(r).Mul(growth), growth.Sub(one))
}

// GenerateSchedule builds the repayment schedule for req. The principal on
// req is the amount scheduled; capitalized taxes must already be folded in
// (see ResolveAdjustedPrincipal). Charges are applied separately by
// ApplyCharges.
func (g *AmortizationScheduleGenerator) GenerateSchedule(req LoanScheduleRequest) (*Schedule, error) {
	const op = "loans.GenerateSchedule"

	if err := checkRequest(op, req); err != nil {
		return nil, err
	}

	round := g.opts.Rounder.Round
	n := req.NumberOfRepayments
	gracePrincipal := req.GraceOnPrincipalPayment
	graceInterest := req.GraceOnInterestPayment
	dueDates := DueDates(req)
	disbursement := req.ExpectedDisbursementDate

	interestStart := disbursement
	if req.InterestChargedFromDate != nil {
		interestStart = *req.InterestChargedFromDate
	}
	if gc := req.GraceOnInterestCharged; gc > 0 {
		interestStart = datetime.MaxDate(interestStart, dueDates[gc-1])
	}

	principal := round(req.Principal)
	periodRate := g.PeriodRate(req)
	dailyRate := mathutil.Div(g.AnnualRate(req), decimal.NewFromInt(int64(g.opts.DaysInYear)))

	var installment decimal.Decimal
	levelInstallment := req.AmortizationType == EqualInstallments && req.InterestType == DecliningBalance
	if levelInstallment {
		installment = round(Installment(principal, periodRate, n-gracePrincipal))
	}

	g.logger.Debug(fmt.Sprintf("generating %d periods for principal %s at period rate %s",
		n, principal, periodRate),
		zap.String("op", op),
		zap.String("interestType", req.InterestType.String()),
		zap.String("amortizationType", req.AmortizationType.String()),
	)

	schedule := &Schedule{
		DisbursementDate:    disbursement,
		RequestedPrincipal:  principal,
		Principal:           principal,
		DisbursementCharges: decimal.Zero,
		NetDisbursedAmount:  principal,
		Periods:             make([]Period, 0, n),
	}

	balance := principal
	deferred := decimal.Zero
	for k := 1; k <= n; k++ {
		from := disbursement
		if k > 1 {
			from = dueDates[k-2]
		}
		due := dueDates[k-1]

		interestBase := balance
		if req.InterestType == Flat {
			interestBase = principal
		}
		accrued := round(g.accrue(req, interestBase, from, due, interestStart, periodRate, dailyRate))

		var principalDue decimal.Decimal
		switch {
		case k <= gracePrincipal:
			principalDue = decimal.Zero
		case k == n:
			principalDue = balance
		case levelInstallment:
			principalDue = installment.Sub(accrued)
		default:
			principalDue = round(mathutil.Div(balance, decimal.NewFromInt(int64(n-k+1))))
		}
		principalDue = mathutil.Clamp(principalDue, decimal.Zero, balance)

		interestDue := decimal.Zero
		if k <= graceInterest {
			deferred = deferred.Add(accrued)
		} else {
			interestDue = accrued.Add(deferred)
			deferred = decimal.Zero
		}

		balance = balance.Sub(principalDue)
		schedule.Periods = append(schedule.Periods, Period{
			Number:             k,
			FromDate:           from,
			DueDate:            due,
			PrincipalDue:       principalDue,
			InterestDue:        interestDue,
			FeeDue:             decimal.Zero,
			TaxPortion:         decimal.Zero,
			TotalDue:           principalDue.Add(interestDue),
			OutstandingBalance: balance,
		})
	}

	if !deferred.IsZero() {
		return nil, apierrors.NewInvariantViolation(op, "deferred interest %s never became due", deferred)
	}
	if err := checkSchedule(op, schedule); err != nil {
		return nil, err
	}
	schedule.Totals = summarize(schedule)
	return schedule, nil
}

// accrue returns the unrounded interest for one period. Nothing accrues
// before interestStart; a period only partly after it is prorated by days.
func (g *AmortizationScheduleGenerator) accrue(req LoanScheduleRequest, base decimal.Decimal,
	from, due, interestStart time.Time, periodRate, dailyRate decimal.Decimal) decimal.Decimal {
	accrualFrom := datetime.MaxDate(from, interestStart)
	if !due.After(accrualFrom) {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(datetime.DaysBetween(accrualFrom, due)))
	if req.InterestCalculationPeriodType == Daily {
		return base.Mul(dailyRate).Mul(days)
	}
	full := base.Mul(periodRate)
	if !accrualFrom.After(from) {
		return full
	}
	periodDays := decimal.NewFromInt(int64(datetime.DaysBetween(from, due)))
	return mathutil.Div(full.Mul(days), periodDays)
}

// checkRequest guards the generator against requests the validator should
// never have let through.
func checkRequest(op string, req LoanScheduleRequest) error {
	switch {
	case req.NumberOfRepayments <= 0 || req.NumberOfRepayments > constants.MaxNumberOfRepayments:
		return apierrors.NewInvariantViolation(op, "numberOfRepayments must be in [1, %d], got %d",
			constants.MaxNumberOfRepayments, req.NumberOfRepayments)
	case req.RepaymentEvery <= 0:
		return apierrors.NewInvariantViolation(op, "repaymentEvery must be positive, got %d", req.RepaymentEvery)
	case !req.Principal.IsPositive():
		return apierrors.NewInvariantViolation(op, "principal must be positive, got %s", req.Principal)
	case req.InterestRatePerPeriod.IsNegative():
		return apierrors.NewInvariantViolation(op, "interest rate must not be negative, got %s", req.InterestRatePerPeriod)
	}
	graces := []struct {
		name  string
		value int
	}{
		{"graceOnPrincipalPayment", req.GraceOnPrincipalPayment},
		{"graceOnInterestPayment", req.GraceOnInterestPayment},
		{"graceOnInterestCharged", req.GraceOnInterestCharged},
	}
	for _, grace := range graces {
		if grace.value < 0 || grace.value >= req.NumberOfRepayments {
			return apierrors.NewInvariantViolation(op, "%s %d outside [0, %d)", grace.name, grace.value, req.NumberOfRepayments)
		}
	}
	return nil
}

// checkSchedule verifies the structural guarantees every schedule carries.
func checkSchedule(op string, s *Schedule) error {
	if len(s.Periods) == 0 {
		return apierrors.NewInvariantViolation(op, "schedule has no periods")
	}
	total := decimal.Zero
	if s.Periods[0].DueDate.Before(s.DisbursementDate) {
		return apierrors.NewInvariantViolation(op, "first due date %s precedes disbursement %s",
			s.Periods[0].DueDate.Format(constants.DateLayout), s.DisbursementDate.Format(constants.DateLayout))
	}
	for i, p := range s.Periods {
		previous := s.Periods[max(i-1, 0)].DueDate
		if i > 0 && !p.DueDate.After(previous) {
			return apierrors.NewInvariantViolation(op, "period %d due %s is not after %s",
				p.Number, p.DueDate.Format(constants.DateLayout), previous.Format(constants.DateLayout))
		}
		if p.PrincipalDue.IsNegative() || p.InterestDue.IsNegative() {
			return apierrors.NewInvariantViolation(op, "period %d has a negative amount", p.Number)
		}
		total = total.Add(p.PrincipalDue)
	}
	if !total.Equal(s.Principal) {
		return apierrors.NewInvariantViolation(op, "principal due %s does not sum to %s", total, s.Principal)
	}
	if last := s.Periods[len(s.Periods)-1]; !last.OutstandingBalance.IsZero() {
		return apierrors.NewInvariantViolation(op, "final balance %s is not zero", last.OutstandingBalance)
	}
	return nil
}

func summarize(s *Schedule) Totals {
	t := Totals{
		Principal: decimal.Zero,
		Interest:  decimal.Zero,
		Fees:      s.DisbursementCharges,
		Taxes:     decimal.Zero,
		Repayment: decimal.Zero,
	}
	for _, p := range s.Periods {
		t.Principal = t.Principal.Add(p.PrincipalDue)
		t.Interest = t.Interest.Add(p.InterestDue)
		t.Fees = t.Fees.Add(p.FeeDue)
		t.Taxes = t.Taxes.Add(p.TaxPortion)
		t.Repayment = t.Repayment.Add(p.TotalDue)
	}
	return t
}
